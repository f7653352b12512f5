package alog

import "time"

// TimerSet holds all timers used by the writer loop
type TimerSet struct {
	flushTicker     *time.Ticker
	heartbeatTicker *time.Ticker
	heartbeatChan   <-chan time.Time // nil when heartbeats are off; a nil channel never fires
}

// setupTimers creates the tickers for cfg
func setupTimers(cfg *Config) *TimerSet {
	timers := &TimerSet{}
	timers.flushTicker = time.NewTicker(flushInterval(cfg))
	timers.heartbeatChan = timers.setupHeartbeat(cfg)
	return timers
}

// setupHeartbeat starts the heartbeat ticker if enabled
func (t *TimerSet) setupHeartbeat(cfg *Config) <-chan time.Time {
	if cfg.HeartbeatIntervalS <= 0 {
		return nil
	}
	t.heartbeatTicker = time.NewTicker(time.Duration(cfg.HeartbeatIntervalS) * time.Second)
	return t.heartbeatTicker.C
}

// reset adjusts tickers after a configuration change
func (t *TimerSet) reset(oldCfg, newCfg *Config) {
	if oldCfg.FlushIntervalMs != newCfg.FlushIntervalMs {
		t.flushTicker.Reset(flushInterval(newCfg))
	}

	if oldCfg.HeartbeatIntervalS != newCfg.HeartbeatIntervalS {
		if t.heartbeatTicker != nil {
			t.heartbeatTicker.Stop()
			t.heartbeatTicker = nil
		}
		t.heartbeatChan = t.setupHeartbeat(newCfg)
	}
}

// stop stops all active timers
func (t *TimerSet) stop() {
	t.flushTicker.Stop()
	if t.heartbeatTicker != nil {
		t.heartbeatTicker.Stop()
	}
}

func flushInterval(cfg *Config) time.Duration {
	ms := cfg.FlushIntervalMs
	if ms <= 0 {
		ms = defaultConfig.FlushIntervalMs
	}
	d := time.Duration(ms) * time.Millisecond
	if d < minWaitTime {
		d = minWaitTime
	}
	return d
}
