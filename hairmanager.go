package hairmanager

import (
	"context"
	"embed"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/typesense/typesense-go/typesense/api"

	"github.com/timknowlden/HairManager-sub001/config"
	"github.com/timknowlden/HairManager-sub001/database"
	redis_db "github.com/timknowlden/HairManager-sub001/internal/redis-db"
	"github.com/timknowlden/HairManager-sub001/internal/search"
)

// HairManager represents the main struct for the application, tying the
// datasource, queue, search and redis clients together.
type HairManager struct {
	queue      *Queue
	search     *search.TypesenseClient
	redis      redis.UniversalClient
	datasource database.IDataSource
}

//go:embed sql/*.sql
var SQLFiles embed.FS

// NewHairManager initializes a new instance with the provided database
// datasource. It fetches the configuration and initializes the Redis client,
// queue and search client.
func NewHairManager(db database.IDataSource) (*HairManager, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	redisClient, err := redis_db.NewRedisClient([]string{fmt.Sprintf("redis://%s", configuration.Redis.Dns)}, configuration.Redis.SkipTLSVerify)
	if err != nil {
		return nil, err
	}
	newQueue := NewQueue(configuration)
	newSearch := search.NewTypesenseClient(configuration.TypeSenseKey, []string{configuration.TypeSense.Dns})

	return &HairManager{
		datasource: db,
		queue:      newQueue,
		redis:      redisClient.Client(),
		search:     newSearch,
	}, nil
}

// Search performs a search on the specified collection using the provided
// query parameters.
func (h *HairManager) Search(collection string, query *api.SearchCollectionParams) (interface{}, error) {
	return h.search.Search(context.Background(), collection, query)
}
