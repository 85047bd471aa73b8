package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/rebk-studio/ms-go-studio/config"
)

func configureLogging(cfg *config.Config) error {
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}

	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.JSONFormatter{})

	return nil
}
