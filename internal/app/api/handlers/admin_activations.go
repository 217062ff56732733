package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/licensing/internal/app/service/activation"
	"github.com/fatflowers/licensing/internal/app/service/release"
	"github.com/fatflowers/licensing/internal/models"
	"github.com/fatflowers/licensing/pkg/response"
	"github.com/fatflowers/licensing/pkg/types"
)

type CreateActivationRequest struct {
	Key       string      `json:"key" binding:"required"`
	Location  string      `json:"location" binding:"required"`
	Track     types.Track `json:"track"`
	ReleaseID *string     `json:"release_id"`
}

type ActivationRequest struct {
	ID string `json:"id" binding:"required"`
}

type SetTrackRequest struct {
	ID    string      `json:"id" binding:"required"`
	Track types.Track `json:"track" binding:"required"`
}

type ActivationDetail struct {
	Activation *models.Activation `json:"activation"`
	Upgrades   []*models.Upgrade  `json:"upgrades"`
}

// @Summary      List activations (Admin)
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body types.ScanRequest true "Filters, pagination and sorting"
// @Success      200  {object}  handlers.RespActivationList
// @Router       /api/v1/admin/activation/list [post]
func ApiListActivations(activations *activation.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.ScanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		items, total, err := activations.Scan(c.Request.Context(), &req)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(&ListResponse[*models.Activation]{Items: items, Total: total}))
	}
}

// @Summary      Get an activation (Admin)
// @Description  Returns the activation with its upgrade history.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body handlers.ActivationRequest true "Activation"
// @Success      200  {object}  handlers.RespActivationDetail
// @Router       /api/v1/admin/activation/get [post]
func ApiGetActivation(activations *activation.Service, releases *release.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ActivationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		ctx := c.Request.Context()
		a, err := activations.Get(ctx, req.ID)
		if err != nil {
			fail(c, err)
			return
		}
		upgrades, err := releases.Upgrades(ctx, a.ID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(&ActivationDetail{Activation: a, Upgrades: upgrades}))
	}
}

// @Summary      Activate a location (Admin)
// @Description  Activates a location for a key, bypassing payment checks but not the activation limit.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body handlers.CreateActivationRequest true "Activation"
// @Success      200  {object}  handlers.RespActivation
// @Router       /api/v1/admin/activation/create [post]
func ApiCreateActivation(activations *activation.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateActivationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		a, err := activations.Create(c.Request.Context(), activation.CreateRequest{
			Key:       req.Key,
			Location:  req.Location,
			Track:     req.Track,
			ReleaseID: req.ReleaseID,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(a))
	}
}

// @Summary      Deactivate an activation (Admin)
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body handlers.ActivationRequest true "Activation"
// @Success      200  {object}  handlers.RespActivation
// @Router       /api/v1/admin/activation/deactivate [post]
func ApiDeactivateActivation(activations *activation.Service) gin.HandlerFunc {
	return activationTransition(func(c *gin.Context, id string) (*models.Activation, error) {
		return activations.Deactivate(c.Request.Context(), id, time.Time{})
	})
}

// @Summary      Disable an activation (Admin)
// @Description  Disabled locations can never be activated again.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body handlers.ActivationRequest true "Activation"
// @Success      200  {object}  handlers.RespActivation
// @Router       /api/v1/admin/activation/disable [post]
func ApiDisableActivation(activations *activation.Service) gin.HandlerFunc {
	return activationTransition(func(c *gin.Context, id string) (*models.Activation, error) {
		return activations.Disable(c.Request.Context(), id)
	})
}

func activationTransition(apply func(c *gin.Context, id string) (*models.Activation, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ActivationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		a, err := apply(c, req.ID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(a))
	}
}

// @Summary      Change an activation's release track (Admin)
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body handlers.SetTrackRequest true "Track"
// @Success      200  {object}  handlers.RespActivation
// @Router       /api/v1/admin/activation/track [post]
func ApiSetActivationTrack(activations *activation.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SetTrackRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		a, err := activations.SetTrack(c.Request.Context(), req.ID, req.Track)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(a))
	}
}

// @Summary      Delete an activation (Admin)
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body handlers.ActivationRequest true "Activation"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/activation/delete [post]
func ApiDeleteActivation(activations *activation.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ActivationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if err := activations.Delete(c.Request.Context(), req.ID); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}
