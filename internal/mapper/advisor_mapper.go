package mapper

import (
	"encoding/json"
	"time"

	"restaurant-advisor-be/internal/entity"
	"restaurant-advisor-be/internal/model"

	"gorm.io/datatypes"
)

type AdvisorMapper struct{}

func NewAdvisorMapper() *AdvisorMapper {
	return &AdvisorMapper{}
}

func (m *AdvisorMapper) UserToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	var updated *time.Time
	if !u.UpdatedAt.IsZero() {
		t := u.UpdatedAt
		updated = &t
	}
	return &entity.User{
		Id:           u.Id,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		FullName:     u.FullName,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    updated,
	}
}

func (m *AdvisorMapper) UserToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}
	out := &model.User{
		Id:           u.Id,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		FullName:     u.FullName,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt,
	}
	if u.UpdatedAt != nil {
		out.UpdatedAt = *u.UpdatedAt
	}
	return out
}

func (m *AdvisorMapper) SessionToEntity(s *model.AdvisorSession) *entity.Session {
	if s == nil {
		return nil
	}
	return &entity.Session{
		Id:           s.Id,
		UserId:       s.UserId,
		Status:       entity.SessionStatus(s.Status),
		CreatedAt:    s.CreatedAt,
		LastActivity: s.LastActivity,
	}
}

func (m *AdvisorMapper) SessionToModel(s *entity.Session) *model.AdvisorSession {
	if s == nil {
		return nil
	}
	return &model.AdvisorSession{
		Id:           s.Id,
		UserId:       s.UserId,
		Status:       string(s.Status),
		CreatedAt:    s.CreatedAt,
		LastActivity: s.LastActivity,
	}
}

func (m *AdvisorMapper) TurnToEntity(t *model.ConversationTurn) *entity.ConversationTurn {
	if t == nil {
		return nil
	}
	var specialists []string
	if len(t.Specialists) > 0 {
		_ = json.Unmarshal(t.Specialists, &specialists)
	}
	return &entity.ConversationTurn{
		Id:          t.Id,
		SessionId:   t.SessionId,
		Seq:         t.Seq,
		Query:       t.Query,
		Response:    t.Response,
		Specialists: specialists,
		CreatedAt:   t.CreatedAt,
	}
}

func (m *AdvisorMapper) TurnToModel(t *entity.ConversationTurn) *model.ConversationTurn {
	if t == nil {
		return nil
	}
	specialists, _ := json.Marshal(t.Specialists)
	return &model.ConversationTurn{
		Id:          t.Id,
		SessionId:   t.SessionId,
		Seq:         t.Seq,
		Query:       t.Query,
		Response:    t.Response,
		Specialists: datatypes.JSON(specialists),
		CreatedAt:   t.CreatedAt,
	}
}

func (m *AdvisorMapper) LongTermToEntity(r *model.LongTermRecord) *entity.LongTermRecord {
	if r == nil {
		return nil
	}
	prefs := map[string]entity.PreferenceValue{}
	if len(r.Preferences) > 0 {
		_ = json.Unmarshal(r.Preferences, &prefs)
	}
	var insights []string
	if len(r.Insights) > 0 {
		_ = json.Unmarshal(r.Insights, &insights)
	}
	return &entity.LongTermRecord{
		UserId:      r.UserId,
		Preferences: prefs,
		Insights:    insights,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (m *AdvisorMapper) LongTermToModel(r *entity.LongTermRecord) *model.LongTermRecord {
	if r == nil {
		return nil
	}
	prefs, _ := json.Marshal(r.Preferences)
	insights, _ := json.Marshal(r.Insights)
	return &model.LongTermRecord{
		UserId:      r.UserId,
		Preferences: datatypes.JSON(prefs),
		Insights:    datatypes.JSON(insights),
		UpdatedAt:   r.UpdatedAt,
	}
}
