// Package config defines the necessary types to configure the application.
// An example config file config.yaml is provided in the repository.
package config

import (
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
)

type Config struct {
	commoncfg.BaseConfig `mapstructure:",squash" yaml:",inline"`

	Telegram    Telegram    `yaml:"telegram"`
	ValKey      ValKey      `yaml:"valkey"`
	Wizard      Wizard      `yaml:"wizard"`
	Pipeline    Pipeline    `yaml:"pipeline"`
	Housekeeper Housekeeper `yaml:"housekeeper"`
}

type Telegram struct {
	Token       commoncfg.SourceRef `yaml:"token"`
	PollTimeout time.Duration       `yaml:"pollTimeout" default:"30s"`
}

// ValKey configures the shared session store. When disabled, sessions live in
// process memory and the housekeeper job cannot run as a separate process.
type ValKey struct {
	Enabled  bool                `yaml:"enabled" default:"false"`
	Host     commoncfg.SourceRef `yaml:"host"`
	User     commoncfg.SourceRef `yaml:"user"`
	Password commoncfg.SourceRef `yaml:"password"`
	Prefix   string              `yaml:"prefix" default:"watermark-bot"`
}

type Wizard struct {
	SessionTTL time.Duration `yaml:"sessionTTL" default:"30m"`
	// ReplacePending controls what a new video submission does to a pending
	// wizard session: replace it (default) or reject the submission.
	ReplacePending bool `yaml:"replacePending" default:"true"`
}

type Pipeline struct {
	WorkDir              string        `yaml:"workDir" default:"./downloads"`
	FFmpegBin            string        `yaml:"ffmpegBin" default:"ffmpeg"`
	ProgressEditInterval time.Duration `yaml:"progressEditInterval" default:"2s"`
}

type Housekeeper struct {
	TriggerInterval time.Duration `yaml:"triggerInterval" default:"5m"`
	IdleTimeout     time.Duration `yaml:"idleTimeout" default:"30m"`
}
