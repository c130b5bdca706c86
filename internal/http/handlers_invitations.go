package http

import (
	"net/http"
	"time"
)

type issueInvitationRequest struct {
	MaxUses   int        `json:"max_uses"`
	ExpiresAt *time.Time `json:"expires_at"`
}

func (s *Server) handleIssueInvitation(w http.ResponseWriter, r *http.Request) {
	var req issueInvitationRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	inv, err := s.invitations.Issue(r.Context(), currentUser(r).ID, req.MaxUses, req.ExpiresAt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInvitationDTO(*inv))
}

func (s *Server) handleListInvitations(w http.ResponseWriter, r *http.Request) {
	invs, err := s.invitations.ListByIssuer(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]invitationDTO, 0, len(invs))
	for _, inv := range invs {
		out = append(out, toInvitationDTO(inv))
	}
	writeJSON(w, http.StatusOK, listDTO[invitationDTO]{Items: out, Total: int64(len(out))})
}

func (s *Server) handleDeactivateInvitation(w http.ResponseWriter, r *http.Request) {
	if err := s.invitations.Deactivate(r.Context(), currentUser(r).ID, r.PathValue("code")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
