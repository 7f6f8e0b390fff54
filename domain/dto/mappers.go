package dto

import (
	"github.com/tablostudio/tablo-api/domain/models"
	"github.com/tablostudio/tablo-api/domain/repositories"
)

func PartnerToResponse(partner *models.Partner) *PartnerResponse {
	if partner == nil {
		return nil
	}
	return &PartnerResponse{
		ID:        partner.ID,
		Name:      partner.Name,
		Email:     partner.Email,
		Provider:  partner.Provider,
		LastLogin: partner.LastLogin,
		CreatedAt: partner.CreatedAt,
	}
}

func ProjectToResponse(project *models.Project) *ProjectResponse {
	if project == nil {
		return nil
	}
	return &ProjectResponse{
		ID:         project.ID,
		SchoolName: project.SchoolName,
		ClassName:  project.ClassName,
		ClassYear:  project.ClassYear,
		Status:     string(project.Status),
		CreatedAt:  project.CreatedAt,
	}
}

// ProjectToPartnerResponse includes credentials; only the owning partner
// surface may return it.
func ProjectToPartnerResponse(project *models.Project) *PartnerProjectResponse {
	if project == nil {
		return nil
	}
	return &PartnerProjectResponse{
		ProjectResponse:     *ProjectToResponse(project),
		AccessCode:          project.AccessCode,
		AccessCodeEnabled:   project.AccessCodeEnabled,
		AccessCodeExpiresAt: project.AccessCodeExpiresAt,
		ShareToken:          project.ShareToken,
		PreviewToken:        project.PreviewToken,
	}
}

// SessionToGuestResponse is the guest-facing view. The session token is only
// filled at registration and restore; withToken controls that.
func SessionToGuestResponse(session *models.GuestSession, withToken bool) *GuestSessionResponse {
	if session == nil {
		return nil
	}
	resp := &GuestSessionResponse{
		ID:                 session.ID,
		ProjectID:          session.ProjectID,
		Name:               session.GuestName,
		PersonID:           session.TabloPersonID,
		VerificationStatus: string(session.VerificationStatus),
		ClaimState:         string(session.ClaimState().Kind),
		CreatedAt:          session.CreatedAt,
	}
	if withToken {
		resp.SessionToken = session.SessionToken
	}
	return resp
}

func SessionToAdminResponse(session *models.GuestSession) *AdminSessionResponse {
	if session == nil {
		return nil
	}
	return &AdminSessionResponse{
		ID:                 session.ID,
		ProjectID:          session.ProjectID,
		Name:               session.GuestName,
		Email:              session.GuestEmail,
		PersonID:           session.TabloPersonID,
		VerificationStatus: string(session.VerificationStatus),
		Banned:             session.Banned,
		LastActivityAt:     session.LastActivityAt,
		IP:                 session.IP,
		UserAgent:          session.UserAgent,
		CreatedAt:          session.CreatedAt,
	}
}

func SessionsToAdminResponses(sessions []models.GuestSession) []AdminSessionResponse {
	responses := make([]AdminSessionResponse, len(sessions))
	for i := range sessions {
		responses[i] = *SessionToAdminResponse(&sessions[i])
	}
	return responses
}

func PendingRowToResponse(row *repositories.PendingSessionRow) *PendingSessionResponse {
	if row == nil {
		return nil
	}
	return &PendingSessionResponse{
		SessionID:   row.Session.ID,
		GuestName:   row.Session.GuestName,
		PersonID:    row.Session.TabloPersonID,
		PersonName:  row.PersonName,
		OwnerID:     row.OwnerID,
		OwnerName:   row.OwnerName,
		HasConflict: row.HasConflict,
		CreatedAt:   row.Session.CreatedAt,
	}
}

func PendingRowsToResponses(rows []repositories.PendingSessionRow) []PendingSessionResponse {
	responses := make([]PendingSessionResponse, len(rows))
	for i := range rows {
		responses[i] = *PendingRowToResponse(&rows[i])
	}
	return responses
}

func PersonToResponse(person *models.Person) *PersonResponse {
	if person == nil {
		return nil
	}
	return &PersonResponse{
		ID:               person.ID,
		ProjectID:        person.ProjectID,
		Name:             person.Name,
		Type:             string(person.Type),
		Position:         person.Position,
		EffectivePhotoID: person.EffectivePhotoID(),
	}
}

func PersonsToResponses(persons []models.Person) []PersonResponse {
	responses := make([]PersonResponse, len(persons))
	for i := range persons {
		responses[i] = *PersonToResponse(&persons[i])
	}
	return responses
}

func AuditLogToResponse(entry *models.AuditLog) *AuditLogResponse {
	if entry == nil {
		return nil
	}
	return &AuditLogResponse{
		ID:        entry.ID,
		AuditType: string(entry.AuditType),
		Message:   entry.Message,
		Details:   entry.Details,
		CreatedAt: entry.CreatedAt,
	}
}

func AuditLogsToResponses(entries []models.AuditLog) []AuditLogResponse {
	responses := make([]AuditLogResponse, len(entries))
	for i := range entries {
		responses[i] = *AuditLogToResponse(&entries[i])
	}
	return responses
}
