package mcp

var (
	FormatMemories       = formatMemories
	FormatCategories     = formatCategories
	FormatUpdate         = formatUpdate
	FormatDeleteResults  = formatDeleteResults
	RelativeTime         = relativeTime
	ErrorText            = errorText
	AuthMiddleware       = authMiddleware
	NotAuthenticatedText = notAuthenticatedText
)
