// Package alert implements the Alert content-type payload: the
// two-byte (level, description) pairs RecordProtocol emits on the
// error paths spec §7 lists, and parses on the way in.
package alert

import "fmt"

// Level distinguishes a connection-terminating alert from an
// advisory one.
type Level uint8

const (
	LevelWarning Level = 1
	LevelFatal   Level = 2
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Description is the RFC 5246 §7.2 AlertDescription enum, restricted
// to the values the record layer itself can raise.
type Description uint8

const (
	DescriptionCloseNotify            Description = 0
	DescriptionUnexpectedMessage      Description = 10
	DescriptionBadRecordMAC           Description = 20
	DescriptionRecordOverflow         Description = 22
	DescriptionDecodeError            Description = 50
	DescriptionProtocolVersion        Description = 70
	DescriptionInsufficientSecurity   Description = 71
	DescriptionInternalError          Description = 80
)

var descriptionNames = map[Description]string{
	DescriptionCloseNotify:          "close_notify",
	DescriptionUnexpectedMessage:    "unexpected_message",
	DescriptionBadRecordMAC:         "bad_record_mac",
	DescriptionRecordOverflow:       "record_overflow",
	DescriptionDecodeError:          "decode_error",
	DescriptionProtocolVersion:      "protocol_version",
	DescriptionInsufficientSecurity: "insufficient_security",
	DescriptionInternalError:        "internal_error",
}

func (d Description) String() string {
	if name, ok := descriptionNames[d]; ok {
		return name
	}
	return "unknown"
}

// Alert is the two-byte wire payload of a ContentTypeAlert record.
type Alert struct {
	Level       Level
	Description Description
}

// New builds an Alert value.
func New(level Level, desc Description) Alert {
	return Alert{Level: level, Description: desc}
}

// Encode serializes the alert to its two-byte wire form.
func (a Alert) Encode() []byte {
	return []byte{byte(a.Level), byte(a.Description)}
}

// Decode parses a two-byte alert payload.
func Decode(raw []byte) (Alert, error) {
	if len(raw) != 2 {
		return Alert{}, fmt.Errorf("alert: expected 2 bytes, got %d", len(raw))
	}
	return Alert{Level: Level(raw[0]), Description: Description(raw[1])}, nil
}

// Error implements the error interface so an Alert can be returned
// and wrapped like any other error along RecordProtocol's failure
// paths.
func (a Alert) Error() string {
	return fmt.Sprintf("alert: %s %s", a.Level, a.Description)
}
