package mysticbot

import (
	"io"
	"log"
	"os"
	"path/filepath"
)

// SetupLogging configures the process-wide logger from the bot config.
//
// Debug mode adds caller file/line to every record. When cfg.LogFile is set
// the log is mirrored to that file, creating parent directories as needed;
// a file that cannot be opened degrades to stdout-only rather than failing
// startup.
func SetupLogging(cfg *Config) {
	flags := log.Ldate | log.Ltime | log.Lmsgprefix
	if cfg.Debug {
		flags |= log.Lshortfile
	}
	log.SetFlags(flags)

	out := io.Writer(os.Stdout)
	if cfg.LogFile != "" {
		f, err := openLogFile(cfg.LogFile)
		if err != nil {
			log.Printf("[Logging] file mirror unavailable, stdout only: %v", err)
		} else {
			out = io.MultiWriter(os.Stdout, f)
		}
	}
	log.SetOutput(out)

	if cfg.LogFile != "" {
		log.Printf("[Logging] Mirroring to file: %s", cfg.LogFile)
	}
	if cfg.Debug {
		log.Println("[Logging] Debug mode enabled")
	}
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
