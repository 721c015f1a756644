package logger

import (
	log "github.com/sirupsen/logrus"

	"github.com/lozynskaa/CityScape-diplom-sub000/internal/config"
)

// Setup configures the process-wide logrus logger from the LOG_* env block.
func Setup(cfg config.Log) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
