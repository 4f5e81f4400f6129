package dto

type IngestDocumentRequest struct {
	Title     string `json:"title" validate:"required"`
	Content   string `json:"content" validate:"required"`
	Category  string `json:"category" validate:"required,oneof=real_estate demographics food_consumption regulation research general"`
	SourceRef string `json:"source_ref"`
	Page      int    `json:"page" validate:"gte=0"`
}

type CreateNodeRequest struct {
	Name       string                 `json:"name" validate:"required"`
	Kind       string                 `json:"kind" validate:"required"`
	Properties map[string]interface{} `json:"properties"`
}

type CreateEdgeRequest struct {
	FromNode   string                 `json:"from_node" validate:"required"`
	ToNode     string                 `json:"to_node" validate:"required"`
	Relation   string                 `json:"relation" validate:"required,oneof=LOCATED_IN NEAR POPULAR_IN REGULATES COMPETES_IN"`
	Properties map[string]interface{} `json:"properties"`
}
