package search

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/meilisearch/meilisearch-go"

	"rental-manager/internal/models"
)

// ErrDisabled is returned by Search when no index is configured
var ErrDisabled = errors.New("search is disabled")

// Index keeps a full-text copy of properties
type Index interface {
	IndexProperty(property *models.Property) error
	IndexProperties(properties []models.Property) error
	DeleteProperty(id uint) error
	Search(userID uint, params FilterParams) ([]uint, error)
}

// Document is the indexed shape of a property
type Document struct {
	ID            uint    `json:"id"`
	UserID        uint    `json:"user_id"`
	Name          string  `json:"name"`
	Address       string  `json:"address"`
	Neighborhood  string  `json:"neighborhood"`
	City          string  `json:"city"`
	State         string  `json:"state"`
	Description   string  `json:"description"`
	Type          string  `json:"type"`
	Status        string  `json:"status"`
	Rent          float64 `json:"rent"`
	Area          float64 `json:"area"`
	Bedrooms      int     `json:"bedrooms"`
	IsResidential bool    `json:"is_residential"`
	CreatedAt     int64   `json:"created_at"`
}

// NewDocument converts a property into its indexed form
func NewDocument(p *models.Property) Document {
	rent, _ := p.Rent.Float64()
	area, _ := p.Area.Float64()
	return Document{
		ID:            p.ID,
		UserID:        p.UserID,
		Name:          p.Name,
		Address:       p.Address,
		Neighborhood:  p.Neighborhood,
		City:          p.City,
		State:         p.State,
		Description:   p.Description,
		Type:          string(p.Type),
		Status:        string(p.Status),
		Rent:          rent,
		Area:          area,
		Bedrooms:      p.Bedrooms,
		IsResidential: p.IsResidential,
		CreatedAt:     p.CreatedAt.Unix(),
	}
}

type SearchClient struct {
	client *meilisearch.Client
	index  string
}

func NewSearchClient(host, apiKey, index string) *SearchClient {
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:    host,
		APIKey:  apiKey,
		Timeout: 10 * time.Second,
	})
	if index == "" {
		index = "properties"
	}

	return &SearchClient{
		client: client,
		index:  index,
	}
}

// InitIndex initializes the Meilisearch index
func (s *SearchClient) InitIndex() error {
	_, err := s.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        s.index,
		PrimaryKey: "id",
	})
	// Ignore error if index already exists
	if err != nil && !strings.Contains(err.Error(), "index_already_exists") {
		return err
	}

	_, err = s.client.Index(s.index).UpdateSearchableAttributes(&[]string{
		"name",
		"address",
		"neighborhood",
		"city",
		"description",
	})
	if err != nil {
		return err
	}

	_, err = s.client.Index(s.index).UpdateFilterableAttributes(&[]string{
		"user_id",
		"type",
		"status",
		"city",
		"rent",
		"bedrooms",
		"is_residential",
	})
	if err != nil {
		return err
	}

	_, err = s.client.Index(s.index).UpdateSortableAttributes(&[]string{
		"rent",
		"area",
		"created_at",
	})
	return err
}

// IndexProperty indexes a single property
func (s *SearchClient) IndexProperty(property *models.Property) error {
	_, err := s.client.Index(s.index).AddDocuments([]Document{NewDocument(property)}, "id")
	return err
}

// IndexProperties indexes multiple properties
func (s *SearchClient) IndexProperties(properties []models.Property) error {
	if len(properties) == 0 {
		return nil
	}
	docs := make([]Document, len(properties))
	for i := range properties {
		docs[i] = NewDocument(&properties[i])
	}
	_, err := s.client.Index(s.index).AddDocuments(docs, "id")
	return err
}

// DeleteProperty removes a property from the index
func (s *SearchClient) DeleteProperty(id uint) error {
	_, err := s.client.Index(s.index).DeleteDocument(fmt.Sprint(id))
	return err
}

// Search returns the ids of the user's properties matching params, best match first
func (s *SearchClient) Search(userID uint, params FilterParams) ([]uint, error) {
	if params.Limit == 0 {
		params.Limit = 20
	}

	searchReq := &meilisearch.SearchRequest{
		Limit:                params.Limit,
		Offset:               params.Offset,
		Filter:               BuildFilter(userID, params),
		AttributesToRetrieve: []string{"id"},
	}
	if params.SortBy != "" {
		searchReq.Sort = []string{params.SortBy}
	}

	searchRes, err := s.client.Index(s.index).Search(params.Query, searchReq)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(searchRes.Hits))
	for _, hit := range searchRes.Hits {
		if id, ok := hitID(hit); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// hitID extracts the numeric id from a search hit
func hitID(hit interface{}) (uint, bool) {
	hitMap, ok := hit.(map[string]interface{})
	if !ok {
		return 0, false
	}
	id, ok := hitMap["id"].(float64)
	if !ok || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// Disabled is the index used when search is turned off
type Disabled struct{}

func (Disabled) IndexProperty(*models.Property) error    { return nil }
func (Disabled) IndexProperties([]models.Property) error { return nil }
func (Disabled) DeleteProperty(uint) error               { return nil }

func (Disabled) Search(uint, FilterParams) ([]uint, error) {
	return nil, ErrDisabled
}
