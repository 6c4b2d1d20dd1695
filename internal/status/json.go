package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	ON            string     `json:"on"`
	CH            string     `json:"ch"`
	Mode          string     `json:"mode"`
	Price         *float64   `json:"price_eur_kwh,omitempty"`
	PriceHour     string     `json:"price_hour,omitempty"`
	ScheduleHours int        `json:"schedule_hours"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"event_counts"`
	Config        ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of transition counts.
type CountsJSON struct {
	ONEnabled  int `json:"on_enabled"`
	ONDisabled int `json:"on_disabled"`
	CHEnabled  int `json:"ch_enabled"`
	CHDisabled int `json:"ch_disabled"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	SerialPort      string  `json:"serial_port"`
	Baud            int     `json:"baud"`
	Broker          string  `json:"broker"`
	HTTPAddr        string  `json:"http_addr"`
	HeartbeatMs     int64   `json:"heartbeat_ms"`
	ThresholdEURkWh float64 `json:"threshold_eur_kwh"`
	Area            string  `json:"area"`
	ActiveLow       bool    `json:"active_low"`
	PinON           int     `json:"pin_on"`
	PinCH           int     `json:"pin_ch"`
}

func buildInner(snap Snapshot) StatusInner {
	on := string(snap.ON)
	if on == "" {
		on = "UNKNOWN"
	}
	ch := string(snap.CH)
	if ch == "" {
		ch = "UNKNOWN"
	}
	mode := snap.Mode
	if mode == "" {
		mode = "schedule"
	}

	inner := StatusInner{
		ON:            on,
		CH:            ch,
		Mode:          mode,
		ScheduleHours: snap.ScheduleHours,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			ONEnabled:  snap.Counts.ONEnabled,
			ONDisabled: snap.Counts.ONDisabled,
			CHEnabled:  snap.Counts.CHEnabled,
			CHDisabled: snap.Counts.CHDisabled,
		},
		Config: ConfigJSON{
			SerialPort:      snap.Config.SerialPort,
			Baud:            snap.Config.Baud,
			Broker:          snap.Config.Broker,
			HTTPAddr:        snap.Config.HTTPAddr,
			HeartbeatMs:     snap.Config.HeartbeatMs,
			ThresholdEURkWh: snap.Config.ThresholdEURkWh,
			Area:            snap.Config.Area,
			ActiveLow:       snap.Config.ActiveLow,
			PinON:           snap.Config.PinON,
			PinCH:           snap.Config.PinCH,
		},
	}

	if snap.HasPrice {
		price := snap.Price
		inner.Price = &price
		inner.PriceHour = snap.PriceHour.Format(time.RFC3339)
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
