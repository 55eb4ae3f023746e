package visitor

import (
	"strings"

	"github.com/mssola/useragent"
)

// Agent is a keyword-heuristic classification of a raw user-agent. It
// makes no claim of accuracy against a canonical UA database.
type Agent struct {
	Browser string
	OS      string
	Device  string
	Mobile  bool
	Bot     bool
}

// Classify buckets a raw user-agent string into coarse browser, OS and
// device categories.
func Classify(raw string) Agent {
	ua := useragent.New(raw)
	lower := strings.ToLower(raw)

	return Agent{
		Browser: classifyBrowser(lower),
		OS:      classifyOS(lower),
		Device:  classifyDevice(lower),
		Mobile:  ua.Mobile() || strings.Contains(lower, "mobile"),
		Bot:     IsBot(raw),
	}
}

func classifyBrowser(ua string) string {
	switch {
	// Edge and Opera embed "chrome", so they must be checked first.
	case strings.Contains(ua, "edg"):
		return "Edge"
	case strings.Contains(ua, "opr") || strings.Contains(ua, "opera"):
		return "Opera"
	case strings.Contains(ua, "firefox"):
		return "Firefox"
	case strings.Contains(ua, "chrome"):
		return "Chrome"
	case strings.Contains(ua, "safari"):
		return "Safari"
	default:
		return "Unknown"
	}
}

func classifyOS(ua string) string {
	switch {
	case strings.Contains(ua, "windows"):
		return "Windows"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad") || strings.Contains(ua, "ipod"):
		return "iOS"
	case strings.Contains(ua, "mac os") || strings.Contains(ua, "macintosh"):
		return "macOS"
	// Android UAs also contain "linux", so Android wins.
	case strings.Contains(ua, "android"):
		return "Android"
	case strings.Contains(ua, "linux"):
		return "Linux"
	default:
		return "Unknown"
	}
}

func classifyDevice(ua string) string {
	switch {
	case strings.Contains(ua, "iphone"):
		return "iPhone"
	case strings.Contains(ua, "ipad"):
		return "iPad"
	case strings.Contains(ua, "android"):
		return "Android Device"
	case strings.Contains(ua, "mobile"):
		return "Mobile Device"
	default:
		return "Desktop"
	}
}
