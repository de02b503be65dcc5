package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/playperu/townsquare/internal/town"
)

const (
	headerTownPassword = "X-Town-Password"
	headerSessionToken = "X-Session-Token"
)

var errNoSession = errors.New("no valid session")

// sessionToken reads the player's session token from X-Session-Token,
// falling back to a bearer Authorization header.
func sessionToken(r *http.Request) string {
	if tok := r.Header.Get(headerSessionToken); tok != "" {
		return tok
	}
	tok, _ := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return tok
}

func playerFromRequest(r *http.Request, t *town.Town) (*town.Player, error) {
	tok := sessionToken(r)
	if tok == "" {
		return nil, errNoSession
	}
	p, ok := t.PlayerBySessionToken(tok)
	if !ok {
		return nil, errNoSession
	}
	return p, nil
}
