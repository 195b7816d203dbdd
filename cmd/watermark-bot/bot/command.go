package bot

import (
	"github.com/spf13/cobra"

	"github.com/vidstamp/watermark-bot/internal/business"
	"github.com/vidstamp/watermark-bot/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"bot",
		"Watermark Bot service",
		"Watermark Bot service polls the Telegram API and drives the watermark wizard and pipeline.",
		buildInfo,
		cmdutils.RunAsService,
		business.Main,
	)
}
