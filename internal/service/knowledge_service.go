package service

import (
	"context"
	"errors"
	"time"

	"restaurant-advisor-be/internal/dto"
	"restaurant-advisor-be/internal/entity"
	"restaurant-advisor-be/internal/pkg/logger"
	"restaurant-advisor-be/internal/repository/unitofwork"
	"restaurant-advisor-be/pkg/events"
	"restaurant-advisor-be/pkg/kb"
	pktNats "restaurant-advisor-be/pkg/nats"

	"github.com/google/uuid"
)

// IKnowledgeService maintains the evidence sources: document ingestion into
// the knowledge base and node/edge creation in the knowledge graph.
type IKnowledgeService interface {
	IngestDocument(ctx context.Context, req *dto.IngestDocumentRequest) error
	CreateNode(ctx context.Context, req *dto.CreateNodeRequest) (uuid.UUID, error)
	CreateEdge(ctx context.Context, req *dto.CreateEdgeRequest) (uuid.UUID, error)
}

type knowledgeService struct {
	kb         *kb.Service
	uowFactory unitofwork.RepositoryFactory
	auditPub   *pktNats.Publisher
	log        logger.ILogger
}

func NewKnowledgeService(kbService *kb.Service, uowFactory unitofwork.RepositoryFactory, auditPub *pktNats.Publisher, log logger.ILogger) IKnowledgeService {
	return &knowledgeService{
		kb:         kbService,
		uowFactory: uowFactory,
		auditPub:   auditPub,
		log:        log,
	}
}

func (s *knowledgeService) IngestDocument(ctx context.Context, req *dto.IngestDocumentRequest) error {
	if err := s.kb.Ingest(ctx, req.Title, req.Content, req.Category, req.SourceRef, req.Page); err != nil {
		return err
	}

	if s.auditPub != nil {
		event := events.NewAuditEvent(events.TypeDocumentIngested, map[string]interface{}{
			"title":    req.Title,
			"category": req.Category,
		})
		if err := s.auditPub.Publish(ctx, event); err != nil {
			s.log.Warn("knowledge_service", "failed to publish ingest event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return nil
}

func (s *knowledgeService) CreateNode(ctx context.Context, req *dto.CreateNodeRequest) (uuid.UUID, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.GraphRepository().FindNodeByName(ctx, req.Name)
	if err != nil {
		return uuid.Nil, err
	}
	if existing != nil {
		return uuid.Nil, errors.New("node already exists")
	}

	node := &entity.GraphNode{
		Id:         uuid.New(),
		Name:       req.Name,
		Kind:       req.Kind,
		Properties: req.Properties,
		CreatedAt:  time.Now(),
	}
	if err := uow.GraphRepository().CreateNode(ctx, node); err != nil {
		return uuid.Nil, err
	}
	return node.Id, nil
}

func (s *knowledgeService) CreateEdge(ctx context.Context, req *dto.CreateEdgeRequest) (uuid.UUID, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	from, err := uow.GraphRepository().FindNodeByName(ctx, req.FromNode)
	if err != nil {
		return uuid.Nil, err
	}
	to, err := uow.GraphRepository().FindNodeByName(ctx, req.ToNode)
	if err != nil {
		return uuid.Nil, err
	}
	if from == nil || to == nil {
		return uuid.Nil, errors.New("both endpoint nodes must exist")
	}

	edge := &entity.GraphEdge{
		Id:         uuid.New(),
		FromNodeId: from.Id,
		ToNodeId:   to.Id,
		Relation:   req.Relation,
		Properties: req.Properties,
		CreatedAt:  time.Now(),
	}
	if err := uow.GraphRepository().CreateEdge(ctx, edge); err != nil {
		return uuid.Nil, err
	}
	return edge.Id, nil
}
