package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/playperu/townsquare/internal/town"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse maps each checked dependency to its status.
type HealthResponse map[string]struct {
	Status string `json:"status"`
}

type townPasswordRequest struct {
	TownID   string `path:"townID"`
	Password string `header:"X-Town-Password"`
}

type townUpdateRequest struct {
	townPasswordRequest
	TownUpdateRequest
}

type conversationAreaRequest struct {
	TownID       string `path:"townID"`
	SessionToken string `header:"X-Session-Token"`
	town.ConversationAreaModel
}

type viewingAreaRequest struct {
	TownID       string `path:"townID"`
	SessionToken string `header:"X-Session-Token"`
	town.ViewingAreaModel
}

type leaderboardRequest struct {
	TownID string `path:"townID"`
	AreaID string `path:"areaID"`
	Limit  int    `query:"limit"`
}

type socketRequest struct {
	TownID   string `query:"townID"`
	UserName string `query:"userName"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Townsquare API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Town directory and session API.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /ws
	getWS, _ := r.NewOperationContext(http.MethodGet, "/ws")
	getWS.SetSummary("Join a town")
	getWS.SetDescription(`Upgrades to a WebSocket carrying {"event", "data"} frames for one player in one town.`)
	getWS.AddReqStructure(socketRequest{})
	getWS.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWS)

	// GET /towns
	listTowns, _ := r.NewOperationContext(http.MethodGet, "/towns")
	listTowns.SetSummary("List towns")
	listTowns.SetDescription("Returns the publicly listed towns with their occupancy.")
	listTowns.AddRespStructure([]town.TownSummary{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listTowns)

	// POST /towns
	createTown, _ := r.NewOperationContext(http.MethodPost, "/towns")
	createTown.SetSummary("Create town")
	createTown.SetDescription("Creates a town from a map. The returned password is needed to update or delete it.")
	createTown.AddReqStructure(TownCreateRequest{})
	createTown.AddRespStructure(town.TownCredentials{}, openapi.WithHTTPStatus(http.StatusOK))
	createTown.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(createTown)

	// PATCH /towns/{townID}
	updateTown, _ := r.NewOperationContext(http.MethodPatch, "/towns/{townID}")
	updateTown.SetSummary("Update town")
	updateTown.SetDescription("Changes a town's friendly name or listing. Requires X-Town-Password.")
	updateTown.AddReqStructure(townUpdateRequest{})
	updateTown.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	updateTown.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(updateTown)

	// DELETE /towns/{townID}
	deleteTown, _ := r.NewOperationContext(http.MethodDelete, "/towns/{townID}")
	deleteTown.SetSummary("Delete town")
	deleteTown.SetDescription("Disconnects every player and removes the town. Requires X-Town-Password.")
	deleteTown.AddReqStructure(townPasswordRequest{})
	deleteTown.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	deleteTown.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(deleteTown)

	// POST /towns/{townID}/conversationArea
	createConv, _ := r.NewOperationContext(http.MethodPost, "/towns/{townID}/conversationArea")
	createConv.SetSummary("Start conversation")
	createConv.SetDescription("Sets the topic of an inactive conversation area. Requires X-Session-Token.")
	createConv.AddReqStructure(conversationAreaRequest{})
	createConv.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	createConv.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(createConv)

	// POST /towns/{townID}/viewingArea
	createViewing, _ := r.NewOperationContext(http.MethodPost, "/towns/{townID}/viewingArea")
	createViewing.SetSummary("Start video")
	createViewing.SetDescription("Sets the video of an inactive viewing area. Requires X-Session-Token.")
	createViewing.AddReqStructure(viewingAreaRequest{})
	createViewing.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	createViewing.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(createViewing)

	// GET /towns/{townID}/simonSaysArea/{areaID}/leaderboard
	getBoard, _ := r.NewOperationContext(http.MethodGet, "/towns/{townID}/simonSaysArea/{areaID}/leaderboard")
	getBoard.SetSummary("Simon Says leaderboard")
	getBoard.SetDescription("Returns the best results recorded for a Simon Says area, best streak first.")
	getBoard.AddReqStructure(leaderboardRequest{})
	getBoard.AddRespStructure([]town.LeaderboardEntry{}, openapi.WithHTTPStatus(http.StatusOK))
	getBoard.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	getBoard.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getBoard)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
