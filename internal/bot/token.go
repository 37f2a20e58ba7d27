package bot

import (
	"fmt"
	"strconv"
	"strings"
)

// tokenKind identifies what a button press asks for.
type tokenKind int

const (
	tokenInvalid tokenKind = iota
	tokenStop
	tokenRoute
	tokenSaveYes
	tokenSaveNo
)

const (
	saveYesToken = "save:yes"
	saveNoToken  = "save:no"
)

// token is a decoded button payload.
type token struct {
	kind    tokenKind
	routeID int
	stopID  int
}

func stopToken(stopID int) string {
	return "s:" + strconv.Itoa(stopID)
}

func routeToken(routeID, stopID int) string {
	return fmt.Sprintf("r:%d:%d", routeID, stopID)
}

// parseToken decodes a button payload. Unknown or malformed payloads yield
// tokenInvalid rather than an error; they come from stale or foreign buttons.
func parseToken(s string) token {
	switch s {
	case saveYesToken:
		return token{kind: tokenSaveYes}
	case saveNoToken:
		return token{kind: tokenSaveNo}
	}

	parts := strings.Split(s, ":")
	switch {
	case len(parts) == 2 && parts[0] == "s":
		stopID, err := strconv.Atoi(parts[1])
		if err != nil {
			return token{}
		}
		return token{kind: tokenStop, stopID: stopID}
	case len(parts) == 3 && parts[0] == "r":
		routeID, err1 := strconv.Atoi(parts[1])
		stopID, err2 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil {
			return token{}
		}
		return token{kind: tokenRoute, routeID: routeID, stopID: stopID}
	}
	return token{}
}
