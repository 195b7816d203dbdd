package housekeeper

import (
	"github.com/spf13/cobra"

	"github.com/vidstamp/watermark-bot/internal/business"
	"github.com/vidstamp/watermark-bot/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"housekeeper",
		"Watermark Bot Housekeeping job",
		"Watermark Bot Housekeeping job evicts wizard sessions that have gone idle.",
		buildInfo,
		cmdutils.RunAsJob,
		business.HousekeeperMain,
	)
}
