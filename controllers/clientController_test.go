package controllers_test

import (
	"fmt"
	"testing"

	"fensterfix-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetClient(t *testing.T) {
	app, _, token := newTestApp(t)

	resp := doJSON(t, app, "POST", "/api/client", token, map[string]any{
		"name":    "  Petra Huber ",
		"phone":   "+43 660 1234567",
		"address": "Lindengasse 12",
		"city":    "Vienna",
	})
	require.Equal(t, 201, resp.StatusCode)

	var created models.Client
	decodeJSON(t, resp, &created)
	// Whitespace is normalized on the way in.
	assert.Equal(t, "Petra Huber", created.Name)

	resp = doJSON(t, app, "GET", fmt.Sprintf("/api/client/%d", created.Id), token, nil)
	require.Equal(t, 200, resp.StatusCode)

	var fetched models.Client
	decodeJSON(t, resp, &fetched)
	assert.Equal(t, created.Id, fetched.Id)
	assert.Equal(t, "Lindengasse 12", fetched.Address)
}

func TestGetClientsSearch(t *testing.T) {
	app, db, token := newTestApp(t)
	seedClient(t, db)
	other := models.Client{Name: "Karl Novak", Phone: "+43 1 9876543", Address: "Hauptstrasse 3"}
	require.NoError(t, db.Create(&other).Error)

	resp := doJSON(t, app, "GET", "/api/clients?q=Novak", token, nil)
	require.Equal(t, 200, resp.StatusCode)

	var out struct {
		Clients []models.Client `json:"clients"`
	}
	decodeJSON(t, resp, &out)
	require.Len(t, out.Clients, 1)
	assert.Equal(t, "Karl Novak", out.Clients[0].Name)
}

func TestUpdateClientPartial(t *testing.T) {
	app, db, token := newTestApp(t)
	client := seedClient(t, db)

	resp := doJSON(t, app, "PUT", fmt.Sprintf("/api/client/%d", client.Id), token,
		map[string]any{"phone": "+43 660 7654321"})
	require.Equal(t, 200, resp.StatusCode)

	var out models.Client
	decodeJSON(t, resp, &out)
	assert.Equal(t, "+43 660 7654321", out.Phone)
	assert.Equal(t, client.Name, out.Name)
	assert.Equal(t, client.Address, out.Address)
}

func TestClientNotFound(t *testing.T) {
	app, _, token := newTestApp(t)

	resp := doJSON(t, app, "GET", "/api/client/4242", token, nil)
	assert.Equal(t, 404, resp.StatusCode)

	resp = doJSON(t, app, "PUT", "/api/client/4242", token, map[string]any{"phone": "+43 1 1"})
	assert.Equal(t, 404, resp.StatusCode)
}
