package handler

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestRoleHandler_List(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/roles", nil, "", adminActor)
	if err := NewRoleHandler().List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp []roleResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp) != 4 {
		t.Fatalf("expected 4 roles, got %d", len(resp))
	}
	if resp[0].ID != "viewer" || resp[0].Name != "Visualizador" || len(resp[0].Permissions) != 1 {
		t.Fatalf("unexpected first role %+v", resp[0])
	}
	if resp[3].ID != "admin" || len(resp[3].Permissions) != 5 {
		t.Fatalf("unexpected last role %+v", resp[3])
	}
}
