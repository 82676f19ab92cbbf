package hairmanager

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/timknowlden/HairManager-sub001/config"
	"github.com/timknowlden/HairManager-sub001/internal/apierror"
	"github.com/timknowlden/HairManager-sub001/internal/request"
	"github.com/timknowlden/HairManager-sub001/model"
)

// distanceCacheTTL is how long a resolved distance stays cached. Road
// distances between fixed addresses do not change often.
const distanceCacheTTL = 24 * time.Hour

type distanceMatrixResponse struct {
	Rows []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Value float64 `json:"value"`
			} `json:"distance"`
			Duration struct {
				Value float64 `json:"value"`
			} `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
	Status string `json:"status"`
}

// GetDistance resolves the travel distance and duration between two
// addresses, consulting the cache before the mapping API. Used to price
// call-out appointments at client locations.
func (h *HairManager) GetDistance(ctx context.Context, origin, destination string) (*model.Distance, error) {
	cacheKey := fmt.Sprintf("distance:%s|%s", origin, destination)

	if cached, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
		var dist model.Distance
		if err := json.Unmarshal([]byte(cached), &dist); err == nil {
			return &dist, nil
		}
	}

	cnf, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	if cnf.Maps.ApiKey == "" {
		return nil, apierror.NewAPIError(apierror.ErrBadRequest, "No mapping API key configured", nil)
	}

	endpoint := fmt.Sprintf("%s?origins=%s&destinations=%s&key=%s",
		cnf.Maps.ApiUrl, url.QueryEscape(origin), url.QueryEscape(destination), cnf.Maps.ApiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var matrix distanceMatrixResponse
	if _, err := request.Call(req, &matrix); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Mapping API is unreachable", err)
	}

	if len(matrix.Rows) == 0 || len(matrix.Rows[0].Elements) == 0 || matrix.Rows[0].Elements[0].Status != "OK" {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, "No route found between the given addresses", nil)
	}

	element := matrix.Rows[0].Elements[0]
	dist := &model.Distance{
		Origin:      origin,
		Destination: destination,
		DistanceKm:  element.Distance.Value / 1000,
		DurationMin: element.Duration.Value / 60,
	}

	if encoded, err := json.Marshal(dist); err == nil {
		if err := h.redis.Set(ctx, cacheKey, encoded, distanceCacheTTL).Err(); err != nil {
			logrus.Warnf("failed to cache distance: %v", err)
		}
	}

	return dist, nil
}
