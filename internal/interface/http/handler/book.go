package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookmall/internal/application/book"
	appinventory "github.com/xiebiao/bookmall/internal/application/inventory"
	"github.com/xiebiao/bookmall/internal/interface/http/dto"
	"github.com/xiebiao/bookmall/internal/interface/http/middleware"
	"github.com/xiebiao/bookmall/pkg/response"
)

// BookHandler 图书HTTP处理器
// 上架/补货是店员操作（路由上挂RequireStaff），浏览对所有人开放
type BookHandler struct {
	publishBookUseCase *appbook.PublishBookUseCase
	listBooksUseCase   *appbook.ListBooksUseCase
	getBookUseCase     *appbook.GetBookUseCase
	updateBookUseCase  *appbook.UpdateBookUseCase
	restockUseCase     *appinventory.RestockUseCase
	listLogsUseCase    *appinventory.ListLogsUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	publishBookUseCase *appbook.PublishBookUseCase,
	listBooksUseCase *appbook.ListBooksUseCase,
	getBookUseCase *appbook.GetBookUseCase,
	updateBookUseCase *appbook.UpdateBookUseCase,
	restockUseCase *appinventory.RestockUseCase,
	listLogsUseCase *appinventory.ListLogsUseCase,
) *BookHandler {
	return &BookHandler{
		publishBookUseCase: publishBookUseCase,
		listBooksUseCase:   listBooksUseCase,
		getBookUseCase:     getBookUseCase,
		updateBookUseCase:  updateBookUseCase,
		restockUseCase:     restockUseCase,
		listLogsUseCase:    listLogsUseCase,
	}
}

// PublishBook 发布图书(上架)
// @Summary      发布图书
// @Description  店员上架新书，同时建立库存台账
// @Tags         图书模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.PublishBookRequest true "图书信息"
// @Success      200 {object} response.Response{data=dto.BookResponse} "上架成功"
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      403 {object} response.Response "非店员"
// @Failure      409 {object} response.Response "ISBN已存在"
// @Router       /api/v1/books [post]
func (h *BookHandler) PublishBook(c *gin.Context) {
	var req dto.PublishBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)

	result, err := h.publishBookUseCase.Execute(c.Request.Context(), appbook.PublishBookRequest{
		ISBN:         req.ISBN,
		Title:        req.Title,
		Author:       req.Author,
		Publisher:    req.Publisher,
		Price:        req.Price,
		InitialStock: req.InitialStock,
		CoverURL:     req.CoverURL,
		Description:  req.Description,
		PublisherID:  userID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.BookResponse{
		ID:          result.ID,
		ISBN:        result.ISBN,
		Title:       result.Title,
		Author:      result.Author,
		Publisher:   result.Publisher,
		Price:       result.Price,
		PriceYuan:   dto.FormatPriceYuan(result.Price),
		Available:   result.Available,
		CoverURL:    result.CoverURL,
		Description: result.Description,
		CreatedAt:   result.CreatedAt,
	})
}

// ListBooks 图书列表
// @Summary      图书列表
// @Description  分页浏览图书，支持书名/作者关键词搜索
// @Tags         图书模块
// @Produce      json
// @Param        page query int false "页码(默认1)"
// @Param        page_size query int false "每页数量(默认20,最大100)"
// @Param        keyword query string false "搜索关键词"
// @Success      200 {object} response.Response{data=dto.ListBooksResponse} "查询成功"
// @Router       /api/v1/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	var req dto.ListBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.listBooksUseCase.Execute(c.Request.Context(), appbook.ListBooksRequest{
		Page:     req.Page,
		PageSize: req.PageSize,
		Keyword:  req.Keyword,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	list := make([]dto.BookListItem, len(result.List))
	for i, b := range result.List {
		list[i] = dto.BookListItem{
			ID:        b.ID,
			ISBN:      b.ISBN,
			Title:     b.Title,
			Author:    b.Author,
			Publisher: b.Publisher,
			Price:     b.Price,
			PriceYuan: dto.FormatPriceYuan(b.Price),
			CoverURL:  b.CoverURL,
			CreatedAt: b.CreatedAt,
		}
	}

	response.Success(c, &dto.ListBooksResponse{
		List:       list,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	})
}

// GetBook 图书详情
// @Summary      图书详情
// @Description  查询单本图书，含库存台账中的可售数量
// @Tags         图书模块
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=dto.BookResponse} "查询成功"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	bookID, err := parseUintParam(c, "id")
	if err != nil {
		response.ErrorWithCode(c, 40900, "无效的图书ID")
		return
	}

	result, err := h.getBookUseCase.Execute(c.Request.Context(), bookID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.BookResponse{
		ID:          result.ID,
		ISBN:        result.ISBN,
		Title:       result.Title,
		Author:      result.Author,
		Publisher:   result.Publisher,
		Price:       result.Price,
		PriceYuan:   dto.FormatPriceYuan(result.Price),
		Available:   result.Available,
		CoverURL:    result.CoverURL,
		Description: result.Description,
		CreatedAt:   result.CreatedAt,
	})
}

// UpdateBook 修改图书信息
// @Summary      修改图书信息
// @Description  店员修改图书目录信息；改价不影响历史订单与购物车里的快照价
// @Tags         图书模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.UpdateBookRequest true "修改内容"
// @Success      200 {object} response.Response{data=dto.BookResponse} "修改成功"
// @Failure      403 {object} response.Response "非店员"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	bookID, err := parseUintParam(c, "id")
	if err != nil {
		response.ErrorWithCode(c, 40900, "无效的图书ID")
		return
	}

	var req dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.updateBookUseCase.Execute(c.Request.Context(), appbook.UpdateBookRequest{
		BookID:      bookID,
		Title:       req.Title,
		Author:      req.Author,
		Publisher:   req.Publisher,
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.BookResponse{
		ID:          result.ID,
		ISBN:        result.ISBN,
		Title:       result.Title,
		Author:      result.Author,
		Publisher:   result.Publisher,
		Price:       result.Price,
		PriceYuan:   dto.FormatPriceYuan(result.Price),
		Available:   result.Available,
		CoverURL:    result.CoverURL,
		Description: result.Description,
		CreatedAt:   result.CreatedAt,
	})
}

// Restock 补货
// @Summary      补货
// @Description  店员为指定图书增加库存，同时记录RESTOCK日志
// @Tags         图书模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.RestockRequest true "补货信息"
// @Success      200 {object} response.Response{data=dto.RestockResponse} "补货成功"
// @Failure      403 {object} response.Response "非店员"
// @Failure      404 {object} response.Response "库存台账不存在"
// @Router       /api/v1/books/{id}/restock [post]
func (h *BookHandler) Restock(c *gin.Context) {
	bookID, err := parseUintParam(c, "id")
	if err != nil {
		response.ErrorWithCode(c, 40900, "无效的图书ID")
		return
	}

	var req dto.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.restockUseCase.Execute(c.Request.Context(), appinventory.RestockRequest{
		BookID:     bookID,
		Quantity:   req.Quantity,
		OperatorID: middleware.MustGetUserID(c),
		Remark:     req.Remark,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.RestockResponse{
		BookID:    result.BookID,
		Available: result.Available,
	})
}

// ListStockLogs 库存变更历史
// @Summary      库存变更历史
// @Description  店员查询某本书的库存流水（预留/释放/补货），用于对账
// @Tags         图书模块
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        page query int false "页码(默认1)"
// @Param        page_size query int false "每页数量(默认20)"
// @Success      200 {object} response.Response{data=response.PageData} "查询成功"
// @Failure      403 {object} response.Response "非店员"
// @Router       /api/v1/books/{id}/stock-logs [get]
func (h *BookHandler) ListStockLogs(c *gin.Context) {
	bookID, err := parseUintParam(c, "id")
	if err != nil {
		response.ErrorWithCode(c, 40900, "无效的图书ID")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.listLogsUseCase.Execute(c.Request.Context(), bookID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	list := make([]dto.StockLogItem, len(result.List))
	for i, l := range result.List {
		list[i] = dto.StockLogItem{
			ID:         l.ID,
			BookID:     l.BookID,
			ChangeType: l.ChangeType,
			Quantity:   l.Quantity,
			OrderNo:    l.OrderNo,
			OperatorID: l.OperatorID,
			Remark:     l.Remark,
			CreatedAt:  l.CreatedAt,
		}
	}

	response.SuccessWithPage(c, list, result.Total, result.Page, result.PageSize)
}

// parseUintParam 解析路径上的uint参数
func parseUintParam(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}
