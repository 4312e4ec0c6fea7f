// Package telemetry defines the sensor sample model and the normalization
// applied to every record the device posts.
package telemetry

import "time"

// timeLayout is the display format derived from the sample timestamp.
const timeLayout = "15:04:05"

// Sample is one normalized telemetry reading from the wearable device.
//
// Sensor fields are pointers so that a missing reading stays distinguishable
// from a legitimate zero value; absent fields render as null, never 0.
type Sample struct {
	HeartRate    *float64 `json:"heartRate,omitempty"`
	SpO2         *float64 `json:"spo2,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty"`
	Acceleration *float64 `json:"acceleration,omitempty"`
	FallDetected bool     `json:"fallDetected"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Satellites   *int     `json:"satellites,omitempty"`

	// Timestamp is epoch milliseconds, always set after normalization.
	Timestamp int64 `json:"timestamp"`

	// FormattedTime is derived from Timestamp at ingestion and never
	// accepted from the producer.
	FormattedTime string `json:"formattedTime"`
}

// RawSample is the loosely-structured inbound record. Every field is
// optional; unrecognized fields are dropped by the JSON decoder.
type RawSample struct {
	HeartRate    *float64 `json:"heartRate"`
	SpO2         *float64 `json:"spo2"`
	Temperature  *float64 `json:"temperature"`
	Acceleration *float64 `json:"acceleration"`
	FallDetected *bool    `json:"fallDetected"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Satellites   *int     `json:"satellites"`
	Timestamp    *int64   `json:"timestamp"`
}

// Normalize builds a Sample from a raw record. A missing or zero timestamp
// is replaced with now; FormattedTime is always recomputed. Normalization
// never fails: missing sensor fields pass through as nil.
func Normalize(raw RawSample, now time.Time) Sample {
	ts := now.UnixMilli()
	if raw.Timestamp != nil && *raw.Timestamp != 0 {
		ts = *raw.Timestamp
	}

	fall := false
	if raw.FallDetected != nil {
		fall = *raw.FallDetected
	}

	return Sample{
		HeartRate:     raw.HeartRate,
		SpO2:          raw.SpO2,
		Temperature:   raw.Temperature,
		Acceleration:  raw.Acceleration,
		FallDetected:  fall,
		Latitude:      raw.Latitude,
		Longitude:     raw.Longitude,
		Satellites:    raw.Satellites,
		Timestamp:     ts,
		FormattedTime: time.UnixMilli(ts).Format(timeLayout),
	}
}
