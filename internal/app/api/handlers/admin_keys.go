package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/licensing/internal/app/service/activation"
	"github.com/fatflowers/licensing/internal/app/service/license"
	"github.com/fatflowers/licensing/internal/app/service/payment"
	"github.com/fatflowers/licensing/internal/models"
	"github.com/fatflowers/licensing/pkg/response"
	"github.com/fatflowers/licensing/pkg/types"
)

type KeyRequest struct {
	Key string `json:"key" binding:"required"`
}

type CreateKeyRequest struct {
	Key           string          `json:"key"`
	TransactionID string          `json:"transaction_id" binding:"required"`
	ProductID     string          `json:"product_id" binding:"required"`
	CustomerID    string          `json:"customer_id" binding:"required"`
	Status        types.KeyStatus `json:"status"`
	Max           int             `json:"max" binding:"min=0"`
	ExpiresAt     *time.Time      `json:"expires_at"`
}

// UpdateKeyRequest changes only the fields that are set.
type UpdateKeyRequest struct {
	Key          string           `json:"key" binding:"required"`
	Status       *types.KeyStatus `json:"status"`
	Max          *int             `json:"max"`
	ExpiresAt    *time.Time       `json:"expires_at"`
	ClearExpires bool             `json:"clear_expires"`
}

type RenewKeyRequest struct {
	Key string `json:"key" binding:"required"`
	// TransactionID is the renewal payment, if any.
	TransactionID string `json:"transaction_id"`
}

type ExpireKeyRequest struct {
	Key  string     `json:"key" binding:"required"`
	When *time.Time `json:"when"`
}

type KeyDetail struct {
	Key         *models.Key          `json:"key"`
	ActiveCount int64                `json:"active_count"`
	Activations []*models.Activation `json:"activations"`
	Renewals    []*models.Renewal    `json:"renewals"`
	Logs        []*models.KeyLog     `json:"logs"`
}

// @Summary      List license keys (Admin)
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body types.ScanRequest true "Filters, pagination and sorting"
// @Success      200  {object}  handlers.RespKeyList
// @Router       /api/v1/admin/key/list [post]
func ApiListKeys(keys *license.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.ScanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		items, total, err := keys.Scan(c.Request.Context(), &req)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(&ListResponse[*models.Key]{Items: items, Total: total}))
	}
}

// @Summary      Get a license key (Admin)
// @Description  Returns the key with its activations, renewals and change log.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body handlers.KeyRequest true "Key"
// @Success      200  {object}  handlers.RespKeyDetail
// @Router       /api/v1/admin/key/get [post]
func ApiGetKey(keys *license.Service, activations *activation.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req KeyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		detail, err := keyDetail(c, keys, activations, req.Key)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(detail))
	}
}

func keyDetail(c *gin.Context, keys *license.Service, activations *activation.Service, key string) (*KeyDetail, error) {
	ctx := c.Request.Context()
	k, err := keys.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	d := &KeyDetail{Key: k}
	if d.ActiveCount, err = keys.ActiveCount(ctx, key); err != nil {
		return nil, err
	}
	if d.Activations, err = activations.ListByKey(ctx, key, ""); err != nil {
		return nil, err
	}
	if d.Renewals, err = keys.Renewals(ctx, key); err != nil {
		return nil, err
	}
	if d.Logs, err = keys.Logs(ctx, key); err != nil {
		return nil, err
	}
	return d, nil
}

// @Summary      Create a license key (Admin)
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body handlers.CreateKeyRequest true "Key"
// @Success      200  {object}  handlers.RespKey
// @Router       /api/v1/admin/key/create [post]
func ApiCreateKey(keys *license.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateKeyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		k := &models.Key{
			Key:           req.Key,
			TransactionID: req.TransactionID,
			ProductID:     req.ProductID,
			CustomerID:    req.CustomerID,
			Status:        req.Status,
			Max:           req.Max,
			ExpiresAt:     req.ExpiresAt,
		}
		if err := keys.Create(c.Request.Context(), k); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(k))
	}
}

// @Summary      Update a license key (Admin)
// @Description  Sets status, activation limit or expiration. Each change is logged.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body handlers.UpdateKeyRequest true "Changes"
// @Success      200  {object}  handlers.RespKey
// @Router       /api/v1/admin/key/update [post]
func ApiUpdateKey(keys *license.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateKeyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		ctx := c.Request.Context()
		if req.Status != nil {
			if err := keys.SetStatus(ctx, req.Key, *req.Status); err != nil {
				fail(c, err)
				return
			}
		}
		if req.Max != nil {
			if err := keys.SetMax(ctx, req.Key, *req.Max); err != nil {
				fail(c, err)
				return
			}
		}
		if req.ExpiresAt != nil || req.ClearExpires {
			if err := keys.SetExpires(ctx, req.Key, req.ExpiresAt); err != nil {
				fail(c, err)
				return
			}
		}
		k, err := keys.Get(ctx, req.Key)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(k))
	}
}

// @Summary      Extend a license key (Admin)
// @Description  Moves the expiration forward by one product interval without recording a renewal.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body handlers.KeyRequest true "Key"
// @Success      200  {object}  handlers.RespKey
// @Router       /api/v1/admin/key/extend [post]
func ApiExtendKey(keys *license.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req KeyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		ctx := c.Request.Context()
		if _, err := keys.Extend(ctx, req.Key); err != nil {
			fail(c, err)
			return
		}
		k, err := keys.Get(ctx, req.Key)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(k))
	}
}

// @Summary      Renew a license key (Admin)
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body handlers.RenewKeyRequest true "Key and optional renewal payment"
// @Success      200  {object}  handlers.RespRenewal
// @Router       /api/v1/admin/key/renew [post]
func ApiRenewKey(keys *license.Service, payments *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RenewKeyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		ctx := c.Request.Context()
		var txn *models.Transaction
		if req.TransactionID != "" {
			var err error
			if txn, err = payments.Get(ctx, req.TransactionID); err != nil {
				fail(c, err)
				return
			}
		}
		r, err := keys.Renew(ctx, req.Key, txn)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(r))
	}
}

// @Summary      Expire a license key (Admin)
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body handlers.ExpireKeyRequest true "Key and expiration, now when empty"
// @Success      200  {object}  handlers.RespKey
// @Router       /api/v1/admin/key/expire [post]
func ApiExpireKey(keys *license.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ExpireKeyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		when := time.Now()
		if req.When != nil {
			when = *req.When
		}
		ctx := c.Request.Context()
		if err := keys.Expire(ctx, req.Key, when); err != nil {
			fail(c, err)
			return
		}
		k, err := keys.Get(ctx, req.Key)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(k))
	}
}

// @Summary      Delete a license key (Admin)
// @Description  Deletes the key with its activations and renewals.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body handlers.KeyRequest true "Key"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/key/delete [post]
func ApiDeleteKey(keys *license.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req KeyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if err := keys.Delete(c.Request.Context(), req.Key); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}
