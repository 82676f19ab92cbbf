package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/typesense/typesense-go/typesense"
	"github.com/typesense/typesense-go/typesense/api"
)

const (
	CollectionEmailLogs    = "email_logs"
	CollectionClients      = "clients"
	CollectionAppointments = "appointments"
)

// CollectionConfig holds configuration for a specific collection.
type CollectionConfig struct {
	Schema     *api.CollectionSchema
	IDField    string
	TimeFields []string
}

var collectionConfigs map[string]CollectionConfig

func init() {
	collectionConfigs = map[string]CollectionConfig{
		CollectionEmailLogs: {
			Schema:     getEmailLogSchema(),
			IDField:    "log_id",
			TimeFields: []string{"sent_at", "updated_at"},
		},
		CollectionClients: {
			Schema:     getClientSchema(),
			IDField:    "client_id",
			TimeFields: []string{"created_at"},
		},
		CollectionAppointments: {
			Schema:     getAppointmentSchema(),
			IDField:    "appointment_id",
			TimeFields: []string{"start_time", "end_time", "created_at"},
		},
	}
}

// TypesenseClient wraps the Typesense client and provides methods to interact with it.
type TypesenseClient struct {
	Client *typesense.Client
}

// NotificationPayload represents the payload structure for index notifications.
type NotificationPayload struct {
	Table string                 `json:"table"`
	Data  map[string]interface{} `json:"data"`
}

// NewTypesenseClient initializes and returns a new Typesense client instance.
func NewTypesenseClient(apiKey string, hosts []string) *TypesenseClient {
	client := typesense.NewClient(
		typesense.WithServer(hosts[0]),
		typesense.WithAPIKey(apiKey),
		typesense.WithConnectionTimeout(5*time.Second),
		typesense.WithCircuitBreakerMaxRequests(50),
		typesense.WithCircuitBreakerInterval(2*time.Minute),
		typesense.WithCircuitBreakerTimeout(1*time.Minute),
	)
	return &TypesenseClient{Client: client}
}

// EnsureCollectionsExist ensures that all the necessary collections exist in
// the Typesense schema, creating any that are missing.
func (t *TypesenseClient) EnsureCollectionsExist(ctx context.Context) error {
	for name, config := range collectionConfigs {
		if _, err := t.CreateCollection(ctx, config.Schema); err != nil {
			return fmt.Errorf("failed to create collection %s: %w", name, err)
		}
	}
	return nil
}

// CreateCollection creates a collection in Typesense based on the provided
// schema. An already existing collection is not an error.
func (t *TypesenseClient) CreateCollection(ctx context.Context, schema *api.CollectionSchema) (*api.CollectionResponse, error) {
	resp, err := t.Client.Collections().Create(ctx, schema)
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return nil, nil
		}
		return nil, err
	}
	return resp, nil
}

// Search performs a search query on a specific collection with the provided search parameters.
func (t *TypesenseClient) Search(ctx context.Context, collection string, searchParams *api.SearchCollectionParams) (*api.SearchResult, error) {
	return t.Client.Collection(collection).Documents().Search(ctx, searchParams)
}

// HandleNotification processes an index notification and upserts the data
// into the matching Typesense collection.
func (t *TypesenseClient) HandleNotification(ctx context.Context, table string, data map[string]interface{}) error {
	config, ok := collectionConfigs[table]
	if !ok {
		return fmt.Errorf("unknown collection: %s", table)
	}

	t.ensureSchemaFields(config, data)
	t.normalizeTimeFields(config, data)

	return t.upsertDocument(ctx, table, data)
}

// ensureSchemaFields fills in missing required fields with type defaults.
func (t *TypesenseClient) ensureSchemaFields(config CollectionConfig, data map[string]interface{}) {
	for _, field := range config.Schema.Fields {
		if _, ok := data[field.Name]; !ok {
			isOptional := field.Optional != nil && *field.Optional
			if !isOptional {
				data[field.Name] = getDefaultValue(field.Type)
			}
		}
	}
}

// normalizeTimeFields converts time fields to Unix timestamps.
func (t *TypesenseClient) normalizeTimeFields(config CollectionConfig, data map[string]interface{}) {
	for _, field := range config.TimeFields {
		if fieldValue, ok := data[field]; ok {
			switch v := fieldValue.(type) {
			case time.Time:
				data[field] = v.Unix()
			case int64:
			default:
				data[field] = time.Now().Unix()
			}
		}
	}
}

func (t *TypesenseClient) getIDField(table string) string {
	if config, ok := collectionConfigs[table]; ok {
		return config.IDField
	}
	return ""
}

func (t *TypesenseClient) upsertDocument(ctx context.Context, table string, data map[string]interface{}) error {
	idField := t.getIDField(table)
	if idField != "" {
		if id, ok := data[idField].(string); ok && id != "" {
			data["id"] = id
		}
	}

	_, err := t.Client.Collection(table).Documents().Upsert(ctx, data)
	if err != nil {
		return fmt.Errorf("failed to upsert document in Typesense: %w", err)
	}
	return nil
}

// MigrateTypeSenseSchema adds new fields from the latest schema to the
// existing collection schema in Typesense.
func (t *TypesenseClient) MigrateTypeSenseSchema(ctx context.Context, collectionName string) error {
	collection := t.Client.Collection(collectionName)

	currentSchemaResponse, err := collection.Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve current schema: %w", err)
	}

	currentSchema := &api.CollectionSchema{
		Name:   currentSchemaResponse.Name,
		Fields: currentSchemaResponse.Fields,
	}

	config, ok := collectionConfigs[collectionName]
	if !ok {
		return fmt.Errorf("unknown collection: %s", collectionName)
	}

	newFields := compareSchemas(currentSchema, config.Schema)
	for _, field := range newFields {
		updateSchema := &api.CollectionUpdateSchema{
			Fields: []api.Field{field},
		}
		if _, err := collection.Update(ctx, updateSchema); err != nil {
			return fmt.Errorf("failed to add field %s: %w", field.Name, err)
		}
		logrus.Infof("Added new field %s to collection %s", field.Name, collectionName)
	}

	return nil
}

func compareSchemas(oldSchema, newSchema *api.CollectionSchema) []api.Field {
	var newFields []api.Field
	oldFieldMap := make(map[string]bool)

	for _, field := range oldSchema.Fields {
		oldFieldMap[field.Name] = true
	}
	for _, field := range newSchema.Fields {
		if !oldFieldMap[field.Name] {
			newFields = append(newFields, field)
		}
	}

	return newFields
}

func getDefaultValue(fieldType string) interface{} {
	switch fieldType {
	case "string":
		return ""
	case "int32", "int64":
		return int64(0)
	case "float":
		return float64(0)
	case "bool":
		return false
	case "string[]":
		return []string{}
	default:
		return nil
	}
}

func getEmailLogSchema() *api.CollectionSchema {
	facet := true
	sortBy := "sent_at"
	optional := true
	return &api.CollectionSchema{
		Name: "email_logs",
		Fields: []api.Field{
			{Name: "log_id", Type: "string", Facet: &facet},
			{Name: "owner_id", Type: "string", Facet: &facet},
			{Name: "invoice_ref", Type: "string", Facet: &facet, Optional: &optional},
			{Name: "recipient_email", Type: "string", Facet: &facet},
			{Name: "subject", Type: "string", Facet: &facet, Optional: &optional},
			{Name: "status", Type: "string", Facet: &facet},
			{Name: "provider_message_id", Type: "string", Facet: &facet, Optional: &optional},
			{Name: "error_message", Type: "string", Facet: &facet, Optional: &optional},
			{Name: "sent_at", Type: "int64", Facet: &facet},
			{Name: "updated_at", Type: "int64", Facet: &facet},
		},
		DefaultSortingField: &sortBy,
	}
}

func getClientSchema() *api.CollectionSchema {
	facet := true
	sortBy := "created_at"
	optional := true
	return &api.CollectionSchema{
		Name: "clients",
		Fields: []api.Field{
			{Name: "client_id", Type: "string", Facet: &facet},
			{Name: "owner_id", Type: "string", Facet: &facet},
			{Name: "first_name", Type: "string", Facet: &facet},
			{Name: "last_name", Type: "string", Facet: &facet, Optional: &optional},
			{Name: "email", Type: "string", Facet: &facet, Optional: &optional},
			{Name: "phone", Type: "string", Facet: &facet, Optional: &optional},
			{Name: "created_at", Type: "int64", Facet: &facet},
		},
		DefaultSortingField: &sortBy,
	}
}

func getAppointmentSchema() *api.CollectionSchema {
	facet := true
	sortBy := "start_time"
	optional := true
	return &api.CollectionSchema{
		Name: "appointments",
		Fields: []api.Field{
			{Name: "appointment_id", Type: "string", Facet: &facet},
			{Name: "owner_id", Type: "string", Facet: &facet},
			{Name: "client_id", Type: "string", Facet: &facet},
			{Name: "service_id", Type: "string", Facet: &facet},
			{Name: "location_id", Type: "string", Facet: &facet, Optional: &optional},
			{Name: "status", Type: "string", Facet: &facet},
			{Name: "start_time", Type: "int64", Facet: &facet},
			{Name: "end_time", Type: "int64", Facet: &facet},
			{Name: "created_at", Type: "int64", Facet: &facet},
		},
		DefaultSortingField: &sortBy,
	}
}
