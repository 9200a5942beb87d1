// Package useragent classifies a raw User-Agent header into the coarse
// device, browser and OS buckets used by scan analytics.
package useragent

import (
	"strings"

	ua "github.com/mssola/useragent"
)

const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
	DeviceBot     = "bot"

	Unknown = "Unknown"
)

// Info is the parsed view of a User-Agent.
type Info struct {
	DeviceType string
	Browser    string
	OS         string
}

// Parse never fails; unrecognised parts come back as Unknown.
func Parse(header string) Info {
	if strings.TrimSpace(header) == "" {
		return Info{DeviceType: DeviceDesktop, Browser: Unknown, OS: Unknown}
	}

	agent := ua.New(header)

	browser, _ := agent.Browser()
	if browser == "" {
		browser = Unknown
	}

	return Info{
		DeviceType: deviceType(agent, header),
		Browser:    browser,
		OS:         normalizeOS(agent.Platform() + " " + agent.OS()),
	}
}

func deviceType(agent *ua.UserAgent, header string) string {
	if agent.Bot() {
		return DeviceBot
	}
	lower := strings.ToLower(header)
	if strings.Contains(lower, "ipad") || strings.Contains(lower, "tablet") ||
		(strings.Contains(lower, "android") && !strings.Contains(lower, "mobile")) {
		return DeviceTablet
	}
	if agent.Mobile() {
		return DeviceMobile
	}
	return DeviceDesktop
}

func normalizeOS(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case s == "":
		return Unknown
	case strings.Contains(s, "windows"):
		return "Windows"
	case strings.Contains(s, "iphone"), strings.Contains(s, "ipad"), strings.Contains(s, "ios"):
		return "iOS"
	case strings.Contains(s, "mac os"), strings.Contains(s, "macintosh"):
		return "macOS"
	case strings.Contains(s, "android"):
		return "Android"
	case strings.Contains(s, "linux"), strings.Contains(s, "ubuntu"):
		return "Linux"
	default:
		return Unknown
	}
}
