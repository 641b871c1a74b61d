package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"Solvanity/internal/cli"
	"Solvanity/pkg/appcfg"
	"Solvanity/pkg/logx"
)

func main() {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "getwd: %v\n", err)
		os.Exit(2)
	}

	appConf, err := appcfg.Load(filepath.Join(cwd, "configs", "app.yaml"))
	if err != nil {
		appConf = appcfg.Defaults()
		fmt.Fprintf(os.Stderr, "load app config: %v (using defaults: %s/%s)\n", err, appConf.Language, appConf.LogLevel)
	}

	if err := logx.Init(logx.Config{
		Level:                appConf.LogLevel,
		FilePath:             appConf.LogFile,
		HideSecretsInConsole: appConf.HideSecretsInConsole,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "log init: %v\n", err)
		os.Exit(1)
	}

	logx.S().Debugw("solvanity started",
		"cwd", cwd,
		"lang", appConf.Language,
		"log_level", appConf.LogLevel,
		"hide_secrets_in_console", appConf.HideSecretsInConsole,
	)

	err = cli.NewRootCmd(appConf).ExecuteContext(context.Background())
	if err != nil {
		logx.S().Errorw("solvanity failed", "err", err)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	logx.Close()
	if err != nil {
		os.Exit(1)
	}
}
