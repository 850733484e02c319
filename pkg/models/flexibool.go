package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexiBool accepts true/false, 0/1 and "0"/"1" on the wire. Sensor
// firmware variants disagree on how they encode the alert flags.
type FlexiBool bool

func (b *FlexiBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*b = false
		return nil
	}

	switch string(data) {
	case "true":
		*b = true
		return nil
	case "false":
		*b = false
		return nil
	}

	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" {
		*b = false
		return nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid boolean value %q", string(data))
	}
	*b = n != 0
	return nil
}

func (b FlexiBool) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(b))
}

func (b FlexiBool) Bool() bool {
	return bool(b)
}
