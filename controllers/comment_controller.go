package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/commentbox/middleware"
	"github.com/cppla/commentbox/services"
	"github.com/cppla/commentbox/utils"
)

// CommentController serves the comment endpoints. Reads are public; creation
// runs behind AuthRequired.
type CommentController struct {
	comments *services.CommentService
	logger   *zap.Logger
}

func NewCommentController(comments *services.CommentService, logger *zap.Logger) *CommentController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentController{comments: comments, logger: logger.Named("comments")}
}

type createCommentRequest struct {
	Title    string  `json:"title"`
	Body     string  `json:"body"`
	ParentID *string `json:"parentId"`
	RootID   *string `json:"rootId"`
}

// ListRoots returns all thread roots, newest first.
func (c *CommentController) ListRoots(ctx *gin.Context) {
	comments, err := c.comments.ListRoots(ctx.Request.Context())
	if err != nil {
		c.logger.Error("list roots failed", zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to list comments")
		return
	}
	ctx.JSON(http.StatusOK, comments)
}

// ListByRoot returns the replies of one thread, newest first; [] when none.
func (c *CommentController) ListByRoot(ctx *gin.Context) {
	rootID := ctx.Param("rootId")
	comments, err := c.comments.ListByRoot(ctx.Request.Context(), rootID)
	if err != nil {
		c.logger.Error("list thread failed", zap.String("root_id", rootID), zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to list comments")
		return
	}
	ctx.JSON(http.StatusOK, comments)
}

// GetComment returns one comment, or a JSON null with 200 when it does not exist.
func (c *CommentController) GetComment(ctx *gin.Context) {
	id := ctx.Param("id")
	comment, err := c.comments.GetByID(ctx.Request.Context(), id)
	if err != nil {
		if services.HasCode(err, services.CodeCommentNotFound) {
			ctx.JSON(http.StatusOK, nil)
			return
		}
		c.logger.Error("get comment failed", zap.String("comment_id", id), zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to load comment")
		return
	}
	ctx.JSON(http.StatusOK, comment)
}

// CreateComment stores a comment authored by the session holder.
func (c *CommentController) CreateComment(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req createCommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid request payload")
		return
	}

	comment, err := c.comments.Create(ctx.Request.Context(), user.Username, services.NewComment{
		Title:    req.Title,
		Body:     req.Body,
		ParentID: req.ParentID,
		RootID:   req.RootID,
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to create comment")
		return
	}
	ctx.JSON(http.StatusOK, comment)
}
