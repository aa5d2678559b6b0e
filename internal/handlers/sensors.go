package handlers

import (
	"clariasense/internal/models"
	"clariasense/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	errGetSensors    = "failed to load sensor readings"
	errWriteReadings = "failed to write readings"
	errWriteDistance = "failed to write distance"
)

// ReadingsRequest carries any subset of the three probe values.
type ReadingsRequest struct {
	PH   *float64 `json:"ph,omitempty" example:"7.2"`
	TDS  *float64 `json:"tds,omitempty" example:"320"`
	Temp *float64 `json:"temp,omitempty" example:"27.1"`
}

func (r ReadingsRequest) values() map[models.SensorID]float64 {
	out := make(map[models.SensorID]float64, 3)
	for id, v := range map[models.SensorID]*float64{
		models.SensorPH:   r.PH,
		models.SensorTDS:  r.TDS,
		models.SensorTemp: r.Temp,
	} {
		if v != nil {
			out[id] = *v
		}
	}
	return out
}

// DistanceRequest is the refill sensor payload.
type DistanceRequest struct {
	Distance *float64 `json:"distance" binding:"required" example:"15.2"`
}

// @Summary      Current sensor readings
// @Description  Ordered ph, tds, temp, then any other sensor id alphabetically.
// @Tags         sensors
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, sensors"
// @Failure      500  {object}  map[string]string
// @Router       /api/sensors [get]
func (h *Handler) getSensors(c *gin.Context) {
	readings, err := h.services.Current(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetSensors, "sensors_get_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(readings),
		"sensors": readings,
	})
}

// @Summary      Write sensor readings
// @Description  Stores the given values and records a violation when any is out of range.
// @Tags         sensors
// @Accept       json
// @Produce      json
// @Param        body  body      ReadingsRequest  true  "Any subset of ph, tds, temp"
// @Success      200   {object}  service.IngestResult
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/readings [post]
// @Security     BearerAuth
func (h *Handler) postReadings(c *gin.Context) {
	var req ReadingsRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}

	res, err := h.services.Ingest(c.Request.Context(), deviceName(c), req.values())
	switch {
	case errors.Is(err, service.ErrNoValues), errors.Is(err, service.ErrNonFiniteValue):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.logAndJSONError(c, http.StatusInternalServerError, errWriteReadings, "readings_write_failed", err, "device", deviceName(c))
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary      Write refill distance
// @Description  Stores the water-level distance in cm. Crossing the threshold alerts subscribers, at most once per cooldown.
// @Tags         sensors
// @Accept       json
// @Produce      json
// @Param        body  body      DistanceRequest  true  "Distance payload"
// @Success      200   {object}  map[string]interface{}  "status, distance"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/refill/distance [put]
// @Security     BearerAuth
func (h *Handler) putDistance(c *gin.Context) {
	var req DistanceRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}

	err := h.services.WriteDistance(c.Request.Context(), deviceName(c), *req.Distance)
	switch {
	case errors.Is(err, service.ErrNonFiniteValue):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.logAndJSONError(c, http.StatusInternalServerError, errWriteDistance, "distance_write_failed", err, "device", deviceName(c))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusOK, "distance": *req.Distance})
}
