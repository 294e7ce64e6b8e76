package document

import (
	"io"
	"net/http"
	"strconv"

	"batiplan/bizerror"
	"batiplan/domain"
	"batiplan/misc"
	"batiplan/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterDocumentsHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/documents", middleWares...)

	g.GET("", handleQueryDocuments)
	g.POST("", handleCreateDocument)
	g.GET(":id/content", handleDetailContent)
	g.DELETE(":id", handleDeleteDocument)
}

func handleQueryDocuments(c *gin.Context) {
	query := domain.DocumentQuery{}
	_ = c.MustBindWith(&query, binding.Query)

	documents, err := QueryDocumentsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, documents)
}

// handleCreateDocument takes metadata from headers and the raw content as
// body, the metadata JSON variant would force buffering the upload.
func handleCreateDocument(c *gin.Context) {
	creation := domain.DocumentCreating{
		Name:        c.GetHeader("X-Document-Name"),
		Category:    domain.DocumentCategory(c.GetHeader("X-Document-Category")),
		ContentType: c.ContentType(),
	}
	if chantierId := c.GetHeader("X-Document-Chantier"); chantierId != "" {
		id, err := types.ParseID(chantierId)
		if err != nil {
			c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param", Message: "invalid chantier id '" + chantierId + "'"})
			return
		}
		creation.ChantierID = id
	}
	if creation.Name == "" {
		panic(&bizerror.ErrBadParam{})
	}

	document, err := CreateDocumentFunc(&creation, c.Request.Body, c.Request.ContentLength, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusCreated, document)
}

func handleDetailContent(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("id") + "'"})
		return
	}

	document, r, err := DetailContent(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	defer r.Close()

	c.Status(http.StatusOK)
	if document.ContentType != "" {
		c.Header("Content-Type", document.ContentType)
	}
	if document.Size > 0 {
		c.Header("Content-Length", strconv.FormatInt(document.Size, 10))
	}
	_, _ = io.Copy(c.Writer, r)
}

func handleDeleteDocument(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("id") + "'"})
		return
	}

	if err := DeleteDocumentFunc(id, session.ExtractSessionFromGinContext(c)); err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.AbortWithStatus(http.StatusNoContent)
}
