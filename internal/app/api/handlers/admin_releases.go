package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/licensing/internal/app/service/product"
	"github.com/fatflowers/licensing/internal/app/service/release"
	"github.com/fatflowers/licensing/internal/models"
	"github.com/fatflowers/licensing/pkg/response"
	"github.com/fatflowers/licensing/pkg/types"
)

type ReleaseRequest struct {
	ID string `json:"id" binding:"required"`
}

// UpdateReleaseRequest edits the fields that are set.
type UpdateReleaseRequest struct {
	ID            string                `json:"id" binding:"required"`
	Version       *string               `json:"version"`
	Download      *string               `json:"download"`
	Type          *types.ReleaseType    `json:"type"`
	Changelog     *string               `json:"changelog"`
	ChangelogMode release.ChangelogMode `json:"changelog_mode"`
}

type ChangelogRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	// N is how many releases to include, 10 when empty.
	N int `json:"n" binding:"min=0"`
}

type ReleaseDetail struct {
	Release  *models.Release   `json:"release"`
	Progress *release.Progress `json:"progress"`
}

// @Summary      List releases (Admin)
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body types.ScanRequest true "Filters, pagination and sorting"
// @Success      200  {object}  handlers.RespReleaseList
// @Router       /api/v1/admin/release/list [post]
func ApiListReleases(releases *release.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.ScanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		items, total, err := releases.Scan(c.Request.Context(), &req)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(&ListResponse[*models.Release]{Items: items, Total: total}))
	}
}

// @Summary      Get a release (Admin)
// @Description  Returns the release and how many active installs updated to it.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body handlers.ReleaseRequest true "Release"
// @Success      200  {object}  handlers.RespReleaseDetail
// @Router       /api/v1/admin/release/get [post]
func ApiGetRelease(releases *release.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ReleaseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		ctx := c.Request.Context()
		r, err := releases.Get(ctx, req.ID)
		if err != nil {
			fail(c, err)
			return
		}
		p, err := releases.Progress(ctx, r.ID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(&ReleaseDetail{Release: r, Progress: p}))
	}
}

// @Summary      Create a release (Admin)
// @Description  Creates a draft release, or publishes it right away when status is active.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body release.CreateRequest true "Release"
// @Success      200  {object}  handlers.RespRelease
// @Router       /api/v1/admin/release/create [post]
func ApiCreateRelease(releases *release.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req release.CreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		r, err := releases.Create(c.Request.Context(), req)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(r))
	}
}

// @Summary      Activate a release (Admin)
// @Description  Publishes the release as the product's current version.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body handlers.ReleaseRequest true "Release"
// @Success      200  {object}  handlers.RespRelease
// @Router       /api/v1/admin/release/activate [post]
func ApiActivateRelease(releases *release.Service) gin.HandlerFunc {
	return releaseTransition(func(c *gin.Context, id string) (*models.Release, error) {
		return releases.Activate(c.Request.Context(), id)
	})
}

// @Summary      Pause a release (Admin)
// @Description  Stops serving the release and restores the version the product had before it.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body handlers.ReleaseRequest true "Release"
// @Success      200  {object}  handlers.RespRelease
// @Router       /api/v1/admin/release/pause [post]
func ApiPauseRelease(releases *release.Service) gin.HandlerFunc {
	return releaseTransition(func(c *gin.Context, id string) (*models.Release, error) {
		return releases.Pause(c.Request.Context(), id)
	})
}

// @Summary      Archive a release (Admin)
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body handlers.ReleaseRequest true "Release"
// @Success      200  {object}  handlers.RespRelease
// @Router       /api/v1/admin/release/archive [post]
func ApiArchiveRelease(releases *release.Service) gin.HandlerFunc {
	return releaseTransition(func(c *gin.Context, id string) (*models.Release, error) {
		return releases.Archive(c.Request.Context(), id)
	})
}

func releaseTransition(apply func(c *gin.Context, id string) (*models.Release, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ReleaseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		r, err := apply(c, req.ID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(r))
	}
}

// @Summary      Edit a release (Admin)
// @Description  Only draft and active releases can be edited.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body handlers.UpdateReleaseRequest true "Changes"
// @Success      200  {object}  handlers.RespRelease
// @Router       /api/v1/admin/release/update [post]
func ApiUpdateRelease(releases *release.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateReleaseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		ctx := c.Request.Context()
		var err error
		if req.Version != nil {
			_, err = releases.SetVersion(ctx, req.ID, *req.Version)
		}
		if err == nil && req.Download != nil {
			_, err = releases.SetDownload(ctx, req.ID, *req.Download)
		}
		if err == nil && req.Type != nil {
			_, err = releases.SetType(ctx, req.ID, *req.Type)
		}
		if err == nil && req.Changelog != nil {
			_, err = releases.SetChangelog(ctx, req.ID, *req.Changelog, req.ChangelogMode)
		}
		if err != nil {
			fail(c, err)
			return
		}
		r, err := releases.Get(ctx, req.ID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(r))
	}
}

// @Summary      Delete a release (Admin)
// @Description  Active releases must be paused or archived first.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body handlers.ReleaseRequest true "Release"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/release/delete [post]
func ApiDeleteRelease(releases *release.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ReleaseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if err := releases.Delete(c.Request.Context(), req.ID); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

// @Summary      Product changelog (Admin)
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body handlers.ChangelogRequest true "Product"
// @Success      200  {object}  handlers.RespChangelog
// @Router       /api/v1/admin/release/changelog [post]
func ApiChangelog(releases *release.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ChangelogRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		log, err := releases.Changelog(c.Request.Context(), req.ProductID, req.N)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(map[string]string{"changelog": log}))
	}
}

// @Summary      List products (Admin)
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  handlers.RespProductList
// @Router       /api/v1/admin/product/list [post]
func ApiListProducts(products *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := products.List(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(items))
	}
}
