package models

import (
	"encoding/json"
	"testing"
)

func TestFlexiBool_Unmarshal(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{`true`, true},
		{`false`, false},
		{`1`, true},
		{`0`, false},
		{`"1"`, true},
		{`"0"`, false},
		{`""`, false},
		{`null`, false},
		{`2`, true},
	}

	for _, tc := range cases {
		var b FlexiBool
		if err := json.Unmarshal([]byte(tc.input), &b); err != nil {
			t.Errorf("Unmarshal(%s) failed: %v", tc.input, err)
			continue
		}
		if b.Bool() != tc.want {
			t.Errorf("Unmarshal(%s) = %v, want %v", tc.input, b.Bool(), tc.want)
		}
	}
}

func TestFlexiBool_UnmarshalRejectsGarbage(t *testing.T) {
	var b FlexiBool
	if err := json.Unmarshal([]byte(`"maybe"`), &b); err == nil {
		t.Error("expected error for non-boolean string")
	}
}

func TestFlexiBool_MarshalRoundTrip(t *testing.T) {
	out, err := json.Marshal(FlexiBool(true))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(out) != "true" {
		t.Errorf("expected plain JSON bool, got %s", out)
	}
}

func TestFlexiBool_InRequestPayload(t *testing.T) {
	payload := `{"device_id":"sensor-01","temperature":24.5,"humidity":60,"temp_alert":"1","hum_alert":0}`

	var req SubmitReadingRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !req.TempAlert.Bool() {
		t.Error("expected temp_alert to parse as true")
	}
	if req.HumAlert.Bool() {
		t.Error("expected hum_alert to parse as false")
	}
	if req.Temperature == nil || *req.Temperature != 24.5 {
		t.Error("expected temperature 24.5")
	}
}
