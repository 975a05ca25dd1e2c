// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package models

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestPoint_DecodeBackendPayload(t *testing.T) {
	payload := `{
		"id": 12, "map_id": 3, "user_id": 7,
		"latitude": 48.8566, "longitude": 2.3522,
		"city": "Paris", "country": "France", "continent": "Europe",
		"category": "Monument", "description": null, "photo_path": "abc.webp",
		"timestamp": "2025-06-01T10:20:30.123456"
	}`

	var p Point
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if p.CategoryValue() != CategoryMonument {
		t.Errorf("CategoryValue() = %q, want Monument", p.CategoryValue())
	}
	if p.Description != nil {
		t.Errorf("Description = %v, want nil", *p.Description)
	}
	if p.Timestamp == nil || p.Timestamp.Year() != 2025 || p.Timestamp.Location() != time.UTC {
		t.Errorf("Timestamp = %v, want 2025 UTC", p.Timestamp)
	}
	if got := p.Label(); got != "Paris, France" {
		t.Errorf("Label() = %q, want Paris, France", got)
	}
}

func TestPoint_LabelUnknownCity(t *testing.T) {
	p := Point{}
	if got := p.Label(); got != "Unknown, " {
		t.Errorf("Label() = %q, want %q", got, "Unknown, ")
	}
}

func TestTimestamp_Layouts(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{`"2025-06-01T10:20:30Z"`, false},
		{`"2025-06-01T10:20:30+02:00"`, false},
		{`"2025-06-01T10:20:30"`, false},
		{`"2025-06-01 10:20:30"`, false},
		{`""`, false},
		{`"yesterday"`, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var ts Timestamp
			err := json.Unmarshal([]byte(tt.input), &ts)
			if (err != nil) != tt.wantErr {
				t.Errorf("Unmarshal(%s) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestParticipant_RoleMapping(t *testing.T) {
	var ps []Participant
	payload := `[
		{"user_id": 1, "username": "ana", "role": "Owner", "assigned_color": "#3B82F6"},
		{"user_id": 2, "username": "bo", "role": "Collaborator"}
	]`
	if err := json.Unmarshal([]byte(payload), &ps); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if ps[0].Role != RoleOwner || ps[1].Role != RoleMember {
		t.Errorf("roles = %q, %q; want Owner, Member", ps[0].Role, ps[1].Role)
	}
	if got := ps[1].Color("#123456"); got != "#123456" {
		t.Errorf("Color() fallback = %q, want #123456", got)
	}
	if got := ps[0].Color("#123456"); got != "#3B82F6" {
		t.Errorf("Color() = %q, want #3B82F6", got)
	}
}

func TestCategory(t *testing.T) {
	if _, ok := ParseCategory("Spaceport"); ok {
		t.Error("ParseCategory(Spaceport) should be invalid")
	}
	if c, ok := ParseCategory(""); !ok || c != "" {
		t.Error("ParseCategory(\"\") should be the empty category")
	}
	info, ok := CategoryNature.Info()
	if !ok || info.Glyph != "🌲" || info.Color != "#10B981" {
		t.Errorf("Nature info = %+v", info)
	}
	if len(Categories) != 7 {
		t.Errorf("len(Categories) = %d, want 7", len(Categories))
	}
}

func TestCityResult_Label(t *testing.T) {
	city := "Berlin"
	withCity := CityResult{DisplayName: "Berlin, Germany", City: &city}
	withoutCity := CityResult{DisplayName: "Mitte, Berlin, Germany"}

	if got := withCity.Label(); got != "Berlin" {
		t.Errorf("Label() = %q, want Berlin", got)
	}
	if got := withoutCity.Label(); got != "Mitte" {
		t.Errorf("Label() = %q, want Mitte", got)
	}
}

func TestMap_Gating(t *testing.T) {
	m := &Map{ID: 1, Type: MapTypePersonal, CreatorID: 4}
	if !m.IsPersonal() || !m.OwnedBy(4) || m.OwnedBy(5) || m.OwnedBy(0) {
		t.Errorf("unexpected gating for %+v", m)
	}
	var nilMap *Map
	if nilMap.IsPersonal() || nilMap.OwnedBy(4) {
		t.Error("nil map should not be personal or owned")
	}
	if MapType("Secret").Valid() {
		t.Error("unknown map type should be invalid")
	}
}

func TestEnvelopes(t *testing.T) {
	ok := Success([]int{1}, 4)
	if ok.Status != StatusSuccess || ok.Metadata.Version != 4 || ok.Error != nil {
		t.Errorf("Success() = %+v", ok)
	}
	fail := Failure(&APIError{Code: "CONFLICT", Message: "no map"})
	if fail.Status != StatusError || fail.Data != nil || fail.Error.Code != "CONFLICT" {
		t.Errorf("Failure() = %+v", fail)
	}

	raw, err := json.Marshal(fail)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if _, has := decoded["metadata"].(map[string]interface{})["snapshot_version"]; has {
		t.Error("zero version should be omitted")
	}
}
