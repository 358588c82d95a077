package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/alyssonw2/BD-AJ/auth"
	"github.com/alyssonw2/BD-AJ/collection"
	"github.com/alyssonw2/BD-AJ/filter"
	"github.com/alyssonw2/BD-AJ/models"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	store  *collection.Store
	users  *auth.UserStore
	tokens *auth.TokenIssuer
	cfg    HttpApiConfig
}

// ---------------------------

func (h *Handlers) Register(c *gin.Context) {
	var req models.UserCredentials
	if err := bindBody(c, &req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.users.Register(req.Username, req.Password); err != nil {
		abortWithError(c, h.cfg.Debug, err, "Erro ao registrar usuário")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Usuário registrado com sucesso"})
}

func (h *Handlers) Login(c *gin.Context) {
	var req models.UserCredentials
	if err := bindBody(c, &req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.users.Authenticate(req.Username, req.Password)
	if err != nil {
		abortWithError(c, h.cfg.Debug, err, "Credenciais inválidas")
		return
	}
	token, err := h.tokens.Issue(user.Username)
	if err != nil {
		abortWithError(c, h.cfg.Debug, err, "Erro ao gerar token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"accessToken": token})
}

// ---------------------------

func (h *Handlers) CreateUpload(c *gin.Context) {
	if h.cfg.MaxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxUploadSize)
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
			return
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "no file uploaded", "message": "Nenhum arquivo enviado"})
		return
	}
	// ---------------------------
	// Every other form field becomes metadata
	metadata := make(models.Record)
	if form := c.Request.MultipartForm; form != nil {
		for k, vs := range form.Value {
			switch len(vs) {
			case 0:
			case 1:
				metadata[k] = vs[0]
			default:
				metadata[k] = vs
			}
		}
	}
	// ---------------------------
	src, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, h.cfg.Debug, err, "Erro ao processar o upload")
		return
	}
	defer src.Close()
	record, err := h.store.CreateUpload(metadata, fileHeader.Filename, src)
	if err != nil {
		abortWithError(c, h.cfg.Debug, err, "Erro ao processar o upload")
		return
	}
	log.Debug().Str("filename", fileHeader.Filename).Int64("size", fileHeader.Size).Msg("CreateUpload")
	c.JSON(http.StatusCreated, gin.H{"message": "Upload e registro concluídos com sucesso", "data": record})
}

func (h *Handlers) DeleteUpload(c *gin.Context) {
	filename := c.Param("filename")
	if err := h.store.DeleteUpload(filename); err != nil {
		message := "Erro ao excluir o upload e os dados"
		if errors.Is(err, collection.ErrUploadMetadataNotFound) {
			message = "Arquivo de metadados não encontrado"
		}
		abortWithError(c, h.cfg.Debug, err, message)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Upload e dados excluídos com sucesso"})
}

func (h *Handlers) ListUploads(c *gin.Context) {
	records, err := h.store.ListUploads()
	if err != nil {
		abortWithError(c, h.cfg.Debug, err, "Erro ao listar uploads")
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handlers) ServeUpload(c *gin.Context) {
	blobPath, err := h.store.UploadPath(c.Param("filepath"))
	if err != nil {
		abortWithError(c, h.cfg.Debug, err, "")
		return
	}
	c.File(blobPath)
}

// ---------------------------

func (h *Handlers) ListRecords(c *gin.Context) {
	records, err := h.store.List(c.GetString("folder"))
	if err != nil {
		abortWithError(c, h.cfg.Debug, err, notFoundMessage(err, "Erro ao listar registros"))
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handlers) CreateRecord(c *gin.Context) {
	var body models.Record
	if err := bindBody(c, &body); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	record, err := h.store.Create(c.GetString("folder"), body)
	if err != nil {
		abortWithError(c, h.cfg.Debug, err, "Erro ao criar registro")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Registro criado com sucesso", "data": record})
}

func (h *Handlers) UpdateRecord(c *gin.Context) {
	id, ok := recordIdParam(c)
	if !ok {
		return
	}
	var partial models.Record
	if err := bindBody(c, &partial); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	record, err := h.store.Update(c.GetString("folder"), id, partial)
	if err != nil {
		abortWithError(c, h.cfg.Debug, err, notFoundMessage(err, "Erro ao atualizar registro"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Registro atualizado com sucesso", "data": record})
}

func (h *Handlers) FilterRecords(c *gin.Context) {
	var req models.FilterRequest
	if err := bindBody(c, &req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	records, err := h.store.Filter(c.GetString("folder"), filter.FromClauses(req.Filters))
	if err != nil {
		abortWithError(c, h.cfg.Debug, err, notFoundMessage(err, "Erro ao filtrar registros"))
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handlers) DeleteRecord(c *gin.Context) {
	id, ok := recordIdParam(c)
	if !ok {
		return
	}
	if err := h.store.Delete(c.GetString("folder"), id); err != nil {
		abortWithError(c, h.cfg.Debug, err, notFoundMessage(err, "Erro ao deletar registro"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Registro deletado com sucesso"})
}

// ---------------------------

func recordIdParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid id", "message": "Id inválido"})
		return 0, false
	}
	return id, true
}

func notFoundMessage(err error, fallback string) string {
	switch {
	case errors.Is(err, collection.ErrCollectionNotFound):
		return "Arquivo de dados não encontrado"
	case errors.Is(err, collection.ErrRecordNotFound):
		return "Registro não encontrado"
	}
	return fallback
}
