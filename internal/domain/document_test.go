package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDocumentClone(t *testing.T) {
	endedAt := time.Date(2024, time.May, 1, 10, 0, 0, 0, time.UTC)
	doc := NewDocument()
	doc.Jobs = append(doc.Jobs, json.RawMessage(`{"id":"job-1"}`))
	doc.Messages = append(doc.Messages, Message{ID: "msg-1", ApplicationID: "app-1"})
	doc.VideoCalls = append(doc.VideoCalls, VideoCall{ID: "call-1", Status: CallEnded, EndedAt: &endedAt})

	clone := doc.Clone()
	clone.Messages[0].Read = true
	clone.Jobs[0][2] = 'X'
	*clone.VideoCalls[0].EndedAt = endedAt.Add(time.Hour)

	if doc.Messages[0].Read {
		t.Fatalf("expected original message to stay unread")
	}
	if string(doc.Jobs[0]) != `{"id":"job-1"}` {
		t.Fatalf("expected original job to be untouched, got %s", doc.Jobs[0])
	}
	if !doc.VideoCalls[0].EndedAt.Equal(endedAt) {
		t.Fatalf("expected original endedAt to be untouched, got %v", doc.VideoCalls[0].EndedAt)
	}
}

func TestDocumentNormalizeSerializesEmptyCollections(t *testing.T) {
	var doc Document
	doc.Normalize()

	raw, err := json.Marshal(&doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"jobs":[],"profiles":[],"applications":[],"messages":[],"videoCalls":[]}`
	if string(raw) != want {
		t.Fatalf("unexpected json\nwant %s\ngot  %s", want, raw)
	}
}

func TestCallOngoing(t *testing.T) {
	var missing *VideoCall
	if missing.Ongoing() {
		t.Fatalf("nil call must not be ongoing")
	}
	for status, want := range map[CallStatus]bool{CallCalling: true, CallActive: true, CallEnded: false} {
		call := &VideoCall{Status: status}
		if got := call.Ongoing(); got != want {
			t.Fatalf("status %s: expected ongoing=%v, got %v", status, want, got)
		}
	}
}

func TestRoleValid(t *testing.T) {
	if !RoleEmployer.Valid() || !RoleCandidate.Valid() {
		t.Fatalf("expected both conversation roles to be valid")
	}
	if Role("manager").Valid() {
		t.Fatalf("expected unknown role to be invalid")
	}
}

func TestDocumentCurrentCallPicksMostRecentOngoing(t *testing.T) {
	doc := NewDocument()
	doc.VideoCalls = []VideoCall{
		{ID: "call-1", ApplicationID: "app-1", Status: CallEnded},
		{ID: "call-2", ApplicationID: "app-2", Status: CallActive},
		{ID: "call-3", ApplicationID: "app-1", Status: CallCalling},
		{ID: "call-4", ApplicationID: "app-1", Status: CallEnded},
	}

	got := doc.CurrentCall("app-1")
	if got == nil || got.ID != "call-3" {
		t.Fatalf("expected call-3, got %+v", got)
	}
	got.Status = CallActive
	if doc.VideoCalls[2].Status != CallActive {
		t.Fatalf("expected CurrentCall to point into the document")
	}
	if doc.CurrentCall("app-3") != nil {
		t.Fatalf("expected no call for unknown application")
	}
	if doc.FindCall("call-4") == nil || doc.FindCall("call-9") != nil {
		t.Fatalf("unexpected FindCall results")
	}
}

func TestDocumentConversationKeepsAppendOrder(t *testing.T) {
	doc := NewDocument()
	doc.Messages = []Message{
		{ID: "m1", ApplicationID: "app-1"},
		{ID: "m2", ApplicationID: "app-2"},
		{ID: "m3", ApplicationID: "app-1"},
	}
	got := doc.Conversation("app-1")
	if len(got) != 2 || got[0].ID != "m1" || got[1].ID != "m3" {
		t.Fatalf("unexpected conversation %+v", got)
	}
	if empty := doc.Conversation("app-9"); empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil conversation, got %#v", empty)
	}
}
