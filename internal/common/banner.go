package common

import (
	"fmt"
	"strings"

	"github.com/ternarybob/banner"
)

const bannerWidth = 64

// startupRows are the key/value lines of the startup banner.
func startupRows(config *Config) [][2]string {
	cache := "off"
	if config.Cache.Enabled {
		cache = "on"
		if config.Cache.RefreshSchedule != "" {
			cache += " (refresh " + config.Cache.RefreshSchedule + ")"
		}
	}

	kinds := map[string]int{}
	for _, s := range config.Schemes {
		kinds[strings.ToLower(s.Kind)]++
	}

	return [][2]string{
		{"Version", fmt.Sprintf("%s (%s, %s)", GetVersion(), GetBuild(), GetGitCommit())},
		{"Environment", config.Environment},
		{"Listen", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)},
		{"Storage", config.Storage.Backend + " " + config.StorageAddress()},
		{"Cache", cache},
		{"Schemes", fmt.Sprintf("%d live, %d frozen, %d composite", kinds["live"], kinds["frozen"], kinds["composite"])},
		{"Accounts", fmt.Sprintf("%d", len(config.Accounts))},
	}
}

// PrintBanner prints the boxed startup banner and logs the same facts.
func PrintBanner(config *Config, logger *Logger) {
	rows := startupRows(config)

	b := banner.New().
		SetStyle(banner.StyleDouble).
		SetWidth(bannerWidth).
		SetBorderColor(banner.ColorCyan).
		SetTextColor(banner.ColorWhite).
		SetBold(true)

	b.PrintTopLine()
	b.PrintCenteredText("N A V D A S H")
	b.PrintCenteredText("scheme performance analytics")
	b.PrintSeparatorLine()
	for _, row := range rows {
		b.PrintKeyValue(row[0], row[1], 12)
	}
	b.PrintBottomLine()

	event := logger.Info()
	for _, row := range rows {
		event = event.Str(strings.ToLower(row[0]), row[1])
	}
	event.Msg("Application started")
}

// PrintShutdownBanner prints a one-line boxed shutdown notice.
func PrintShutdownBanner(logger *Logger) {
	b := banner.New().
		SetStyle(banner.StyleDouble).
		SetWidth(bannerWidth).
		SetBorderColor(banner.ColorCyan)

	b.PrintTopLine()
	b.PrintCenteredText("navdash shutting down")
	b.PrintBottomLine()

	logger.Info().Msg("Application shutting down")
}
