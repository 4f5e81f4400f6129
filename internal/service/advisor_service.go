package service

import (
	"context"
	"fmt"

	"restaurant-advisor-be/internal/constant"
	"restaurant-advisor-be/internal/dto"
	"restaurant-advisor-be/internal/entity"
	"restaurant-advisor-be/internal/pkg/logger"
	"restaurant-advisor-be/internal/repository/specification"
	"restaurant-advisor-be/internal/repository/unitofwork"
	"restaurant-advisor-be/pkg/advisor/errs"
	"restaurant-advisor-be/pkg/advisor/evidence"
	"restaurant-advisor-be/pkg/advisor/fusion"
	"restaurant-advisor-be/pkg/advisor/memory"
	"restaurant-advisor-be/pkg/advisor/orchestrator"
	"restaurant-advisor-be/pkg/advisor/permission"
	"restaurant-advisor-be/pkg/advisor/specialist"
	"restaurant-advisor-be/pkg/events"
	pktNats "restaurant-advisor-be/pkg/nats"

	"github.com/google/uuid"
)

type IAdvisorService interface {
	HandleQuery(ctx context.Context, userId uuid.UUID, req *dto.QueryRequest) (*dto.QueryResponse, error)
	ListSessions(ctx context.Context, userId uuid.UUID) ([]dto.SessionResponse, error)
	SessionHistory(ctx context.Context, userId, sessionId uuid.UUID) ([]dto.TurnResponse, error)
	DeleteSession(ctx context.Context, userId, sessionId uuid.UUID) error
	LongTerm(ctx context.Context, userId uuid.UUID) (*dto.LongTermResponse, error)
	Score(ctx context.Context, userId uuid.UUID, req *dto.ScoreRequest) (*dto.OpportunityResponse, error)
	MarketGaps(ctx context.Context, userId uuid.UUID, area string) ([]dto.MarketGapResponse, error)
	Snapshot(ctx context.Context) ([]byte, error)
	Restore(ctx context.Context, data []byte) error
}

const defaultMaxRivals = 3

type advisorService struct {
	orch       *orchestrator.Orchestrator
	store      *memory.Store
	retriever  orchestrator.Retriever
	table      *permission.Table
	registry   *specialist.Registry
	uowFactory unitofwork.RepositoryFactory
	auditPub   *pktNats.Publisher
	weights    fusion.Weights
	log        logger.ILogger
}

func NewAdvisorService(
	orch *orchestrator.Orchestrator,
	store *memory.Store,
	retriever orchestrator.Retriever,
	table *permission.Table,
	registry *specialist.Registry,
	uowFactory unitofwork.RepositoryFactory,
	auditPub *pktNats.Publisher,
	weights fusion.Weights,
	log logger.ILogger,
) IAdvisorService {
	return &advisorService{
		orch:       orch,
		store:      store,
		retriever:  retriever,
		table:      table,
		registry:   registry,
		uowFactory: uowFactory,
		auditPub:   auditPub,
		weights:    weights,
		log:        log,
	}
}

func (s *advisorService) HandleQuery(ctx context.Context, userId uuid.UUID, req *dto.QueryRequest) (*dto.QueryResponse, error) {
	result, err := s.orch.HandleQuery(ctx, userId, req.SessionId, req.Query)
	if err != nil {
		return nil, err
	}

	s.publishAudit(ctx, result, userId)
	return dto.FromResult(result), nil
}

// publishAudit records the turn outcome on the audit bus. Auditing never
// fails a request; a dead bus is logged and skipped.
func (s *advisorService) publishAudit(ctx context.Context, result *orchestrator.Result, userId uuid.UUID) {
	if s.auditPub == nil {
		return
	}

	eventType := events.TypeQueryHandled
	if result.Outcome == orchestrator.OutcomeDenied {
		eventType = events.TypeQueryDenied
	}
	payload := map[string]interface{}{
		"user_id":     userId.String(),
		"session_id":  result.SessionId.String(),
		"outcome":     string(result.Outcome),
		"specialists": result.SpecialistsRun,
	}
	if len(result.Denials) > 0 {
		denied := make([]string, len(result.Denials))
		for i, d := range result.Denials {
			denied[i] = d.Domain
		}
		payload["denied_domains"] = denied
	}
	if err := s.auditPub.Publish(ctx, events.NewAuditEvent(eventType, payload)); err != nil {
		s.log.Warn("advisor_service", "failed to publish audit event", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if len(result.DegradedSources) > 0 {
		degradedEvent := events.NewAuditEvent(events.TypeSourcesDegraded, map[string]interface{}{
			"session_id": result.SessionId.String(),
			"sources":    result.DegradedSources,
		})
		if err := s.auditPub.Publish(ctx, degradedEvent); err != nil {
			s.log.Warn("advisor_service", "failed to publish degradation event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}

func (s *advisorService) ListSessions(ctx context.Context, userId uuid.UUID) ([]dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.SessionRepository().FindAll(ctx,
		specification.ByUserID{UserID: userId},
		specification.OrderBy{Field: "last_activity", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	out := make([]dto.SessionResponse, len(sessions))
	for i, session := range sessions {
		out[i] = dto.SessionResponse{
			Id:           session.Id,
			Status:       string(session.Status),
			CreatedAt:    session.CreatedAt,
			LastActivity: session.LastActivity,
		}
	}
	return out, nil
}

func (s *advisorService) SessionHistory(ctx context.Context, userId, sessionId uuid.UUID) ([]dto.TurnResponse, error) {
	if err := s.mustOwnSession(ctx, userId, sessionId); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	turns, err := uow.TurnRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "seq", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	out := make([]dto.TurnResponse, len(turns))
	for i, turn := range turns {
		out[i] = dto.TurnResponse{
			Seq:         turn.Seq,
			Query:       turn.Query,
			Response:    turn.Response,
			Specialists: turn.Specialists,
			CreatedAt:   turn.CreatedAt,
		}
	}
	return out, nil
}

func (s *advisorService) DeleteSession(ctx context.Context, userId, sessionId uuid.UUID) error {
	if err := s.mustOwnSession(ctx, userId, sessionId); err != nil {
		return err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.TurnRepository().DeleteBySessionId(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.SessionRepository().Delete(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.store.Forget(sessionId)
	return nil
}

func (s *advisorService) mustOwnSession(ctx context.Context, userId, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return err
	}
	if session == nil || session.UserId != userId {
		return errs.ErrSessionInvalid
	}
	return nil
}

func (s *advisorService) LongTerm(ctx context.Context, userId uuid.UUID) (*dto.LongTermResponse, error) {
	record, err := s.store.LongTerm(ctx, userId)
	if err != nil {
		return nil, err
	}

	prefs := make(map[string]dto.PreferenceResponse, len(record.Preferences))
	for key, pref := range record.Preferences {
		prefs[key] = dto.PreferenceResponse{Value: pref.Value, UpdatedAt: pref.UpdatedAt}
	}
	return &dto.LongTermResponse{
		Preferences: prefs,
		Insights:    record.Insights,
		UpdatedAt:   record.UpdatedAt,
	}, nil
}

// Score runs the opportunity calculation directly for an (area, cuisine)
// pair, outside a conversation. Evidence visibility follows the caller's
// role, same as a routed query.
func (s *advisorService) Score(ctx context.Context, userId uuid.UUID, req *dto.ScoreRequest) (*dto.OpportunityResponse, error) {
	filter, err := s.roleFilter(ctx, userId)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("%s restaurant opportunity in %s", req.Cuisine, req.Area)
	result, err := s.retriever.Retrieve(ctx, query, filter)
	if err != nil {
		return nil, err
	}
	if result.FullyDegraded() {
		return nil, errs.ErrAllSourcesUnavailable
	}

	scores := fusion.SubScores{
		Location:   fusion.LocationSubScore(result.Graph, req.Area),
		Uniqueness: fusion.UniquenessSubScore(result.Graph, req.Area, req.Cuisine),
		Sentiment:  fusion.SentimentSubScore(result.Snippets),
		Regulatory: fusion.RegulatorySubScore(result.Graph),
	}
	score, err := fusion.Score(scores, s.weights)
	if err != nil {
		return nil, err
	}

	return &dto.OpportunityResponse{
		Total:          score.Total,
		Interpretation: score.Interpretation(),
		Location:       dto.SubScoreResponse{Value: score.SubScores.Location.Value, Citations: score.SubScores.Location.Citations},
		Uniqueness:     dto.SubScoreResponse{Value: score.SubScores.Uniqueness.Value, Citations: score.SubScores.Uniqueness.Citations},
		Sentiment:      dto.SubScoreResponse{Value: score.SubScores.Sentiment.Value, Citations: score.SubScores.Sentiment.Citations},
		Regulatory:     dto.SubScoreResponse{Value: score.SubScores.Regulatory.Value, Citations: score.SubScores.Regulatory.Citations},
	}, nil
}

// MarketGaps lists underserved cuisines for an area: every cuisine linked
// to the area by a COMPETES_IN edge with few enough rivals, scored and
// ordered best first.
func (s *advisorService) MarketGaps(ctx context.Context, userId uuid.UUID, area string) ([]dto.MarketGapResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	node, err := uow.GraphRepository().FindNodeByName(ctx, area)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return []dto.MarketGapResponse{}, nil
	}

	edges, err := uow.GraphRepository().EdgesFrom(ctx, []uuid.UUID{node.Id}, []string{constant.RelCompetesIn})
	if err != nil {
		return nil, err
	}
	if len(edges) == 0 {
		return []dto.MarketGapResponse{}, nil
	}

	cuisineIds := make([]uuid.UUID, len(edges))
	for i, edge := range edges {
		cuisineIds[i] = edge.ToNodeId
	}
	cuisineNodes, err := uow.GraphRepository().FindNodesByIds(ctx, cuisineIds)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(cuisineNodes))
	for _, n := range cuisineNodes {
		names[n.Id] = n.Name
	}

	areaHits := []evidence.GraphHit{{
		Node:       node.Name,
		Kind:       node.Kind,
		Properties: node.Properties,
	}}

	candidates := make([]fusion.Candidate, 0, len(edges))
	for _, edge := range edges {
		cuisine, ok := names[edge.ToNodeId]
		if !ok {
			continue
		}
		rivals, ok := s.edgeRivals(edge)
		if !ok {
			continue
		}
		candidates = append(candidates, fusion.Candidate{
			Cuisine: cuisine,
			Area:    node.Name,
			Rivals:  rivals,
			Scores: fusion.SubScores{
				Location:   fusion.LocationSubScore(areaHits, node.Name),
				Uniqueness: fusion.UniquenessSubScore(areaHits, node.Name, cuisine),
				Sentiment:  fusion.SentimentSubScore(nil),
				Regulatory: fusion.RegulatorySubScore(areaHits),
			},
		})
	}

	gaps, err := fusion.FindMarketGaps(candidates, s.weights, defaultMaxRivals)
	if err != nil {
		return nil, err
	}

	out := make([]dto.MarketGapResponse, len(gaps))
	for i, gap := range gaps {
		out[i] = dto.MarketGapResponse{
			Cuisine: gap.Cuisine,
			Area:    gap.Area,
			Rivals:  gap.Rivals,
			Total:   gap.Score.Total,
		}
	}
	return out, nil
}

// roleFilter resolves the caller's evidence visibility: the retrieval
// filter over every domain the role may invoke.
func (s *advisorService) roleFilter(ctx context.Context, userId uuid.UUID) (evidence.PermissionFilter, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return evidence.PermissionFilter{}, err
	}
	if user == nil {
		return evidence.PermissionFilter{}, errs.ErrSessionInvalid
	}

	var permitted []specialist.Descriptor
	for _, domain := range constant.AllDomains {
		ok, err := s.table.Authorize(user.Role, domain)
		if err != nil {
			return evidence.PermissionFilter{}, err
		}
		if !ok {
			continue
		}
		if desc, found := s.registry.Get(domain); found {
			permitted = append(permitted, desc)
		}
	}
	return s.table.RetrievalFilter(permitted), nil
}

func (s *advisorService) Snapshot(ctx context.Context) ([]byte, error) {
	return s.store.Snapshot(ctx)
}

func (s *advisorService) Restore(ctx context.Context, data []byte) error {
	return s.store.Restore(ctx, data)
}

// edgeRivals reads the rival count off a COMPETES_IN edge. JSONB numbers
// decode as float64; seeded ints are accepted too. An edge without a usable
// count is skipped rather than treated as an uncontested market.
func (s *advisorService) edgeRivals(edge *entity.GraphEdge) (int, bool) {
	if edge.Properties != nil {
		switch v := edge.Properties["rivals"].(type) {
		case float64:
			return int(v), true
		case int:
			return v, true
		}
	}
	s.log.Warn("advisor_service", "COMPETES_IN edge has no rival count, skipping", map[string]interface{}{
		"edge_id": edge.Id.String(),
	})
	return 0, false
}
