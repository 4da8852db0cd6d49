package handler

import (
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"buildsite/internal/importer"
	"buildsite/internal/middleware"
	"buildsite/pkg/apperror"
	"buildsite/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondError maps a service error onto the response envelope using the
// application error taxonomy.
func respondError(c *gin.Context, err error) {
	c.JSON(apperror.StatusOf(err), response.Fail(apperror.MessageOf(err)))
}

// actor returns the authenticated identity or aborts with 401. RequireRole
// always sets it; the miss branch only fires on routes wired without the
// middleware.
func actor(c *gin.Context) (middleware.Actor, bool) {
	a, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Fail("Not authenticated"))
		return middleware.Actor{}, false
	}
	return a, true
}

// pathID parses a uuid path parameter or aborts with 400.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// listEnvelope is the standard shape for paginated collections.
func listEnvelope(items interface{}, total int64, page, limit int) gin.H {
	return gin.H{
		"items": items,
		"total": total,
		"page":  page,
		"limit": limit,
	}
}

// parseImportFile reads the uploaded form file into raw import rows, choosing
// the parser by extension.
func parseImportFile(header *multipart.FileHeader, requirePrice bool) ([]importer.RawRow, error) {
	f, err := header.Open()
	if err != nil {
		return nil, apperror.Validation("Could not read uploaded file")
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".csv":
		return importer.ParseCSV(f, requirePrice)
	case ".xlsx", ".xlsm":
		return importer.ParseXLSX(f, requirePrice)
	default:
		return nil, apperror.Validation("Unsupported file type; upload .csv or .xlsx")
	}
}
