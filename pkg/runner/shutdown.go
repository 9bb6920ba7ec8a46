package runner

import (
	"log/slog"

	"github.com/waftester/dirhunter/pkg/interactive"
	"github.com/waftester/dirhunter/pkg/report"
)

// ShutdownConfig lists what the shutdown sequence tears down.
type ShutdownConfig struct {
	Pipeline   *report.Pipeline
	SaveOutput bool              // wait for the file consumer
	Completed  *interactive.Flag // set after both channels are drained
	Cleanup    func()            // final step, e.g. finishing the progress bar
	Logger     *slog.Logger
}

// Shutdown runs after every scan task has returned and released its
// sender clones. Each step blocks on the previous one:
//
//  1. close the owner's terminal sender
//  2. wait for the terminal consumer to drain
//  3. close the owner's file sender
//  4. wait for the file consumer, if file output was requested
//  5. set the completion flag, releasing the pause controller
//  6. run cleanup
func Shutdown(cfg ShutdownConfig) {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	p := cfg.Pipeline

	log.Debug("shutdown: closing terminal sender")
	p.Term.Close()

	log.Debug("shutdown: waiting for terminal consumer")
	p.TermConsumer.Wait()

	log.Debug("shutdown: closing file sender")
	p.File.Close()

	if cfg.SaveOutput {
		if p.FileConsumer != nil {
			log.Debug("shutdown: waiting for file consumer")
			p.FileConsumer.Wait()
		} else {
			log.Warn("shutdown: file output requested but no file consumer running")
		}
	}

	if cfg.Completed != nil {
		log.Debug("shutdown: setting completion flag")
		cfg.Completed.Set(true)
	}

	if cfg.Cleanup != nil {
		log.Debug("shutdown: running cleanup")
		cfg.Cleanup()
	}
	log.Debug("shutdown: done")
}
