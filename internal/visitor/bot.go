package visitor

import (
	"strings"

	"github.com/mssola/useragent"
)

// Substrings matched case-insensitively against the User-Agent.
var botSignatures = []string{
	// Generic patterns
	"bot",
	"spider",
	"crawl",

	// Link-preview / unfurler bots
	"facebookexternalhit",
	"whatsapp",
	"slackbot",
	"telegrambot",
	"twitterbot",
	"linkedinbot",
	"preview",

	// HTTP client libraries (not real browsers)
	"go-http-client/",
	"curl/",
	"wget/",
	"python-requests/",
	"python-urllib/",
	"java/",
	"okhttp/",

	// Headless / renderers
	"headlesschrome/",
	"phantomjs",
	"wkhtmltoimage",
	"wkhtmltopdf",
}

// IsBot returns true if the user-agent looks like a bot or link-preview
// fetcher.
func IsBot(rawUA string) bool {
	ua := useragent.New(rawUA)
	if ua.Bot() {
		return true
	}
	lower := strings.ToLower(rawUA)
	for _, sig := range botSignatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}
