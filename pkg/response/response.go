package response

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
)

// 通用业务码；各模块在 1xxxx 区段内自行分配（诊所 12xxx、医生 13xxx、午餐 15xxx ...）
const (
	CodeOK             = 0
	CodeInvalidParam   = 10001
	CodeUnauthorized   = 10002
	CodeForbidden      = 10003
	CodeTooManyRequest = 10004
	CodeTooLarge       = 10005
	CodeInternal       = 50000
)

// 下载文件的 Content-Type
const (
	ContentTypeXLSX     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCalendar = "text/calendar; charset=utf-8"
)

// Response 统一响应信封
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Details string      `json:"details,omitempty"`
}

// Pagination 分页元数据
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// PageData 分页响应数据
type PageData struct {
	List       interface{} `json:"list"`
	Pagination Pagination  `json:"pagination"`
}

func write(c *gin.Context, status int, body Response) {
	c.JSON(status, body)
}

// ── 成功响应 ──

// OK 200
func OK(c *gin.Context, data interface{}) {
	write(c, http.StatusOK, Response{Code: CodeOK, Message: "success", Data: data})
}

// Created 201
func Created(c *gin.Context, data interface{}) {
	write(c, http.StatusCreated, Response{Code: CodeOK, Message: "success", Data: data})
}

// OKPage 200 分页列表（诊所、午餐等）
func OKPage(c *gin.Context, list interface{}, total int64, page, pageSize int) {
	write(c, http.StatusOK, Response{
		Code:    CodeOK,
		Message: "success",
		Data: PageData{
			List:       list,
			Pagination: NewPagination(total, page, pageSize),
		},
	})
}

// NewPagination 由总数与页参数计算分页元数据
func NewPagination(total int64, page, pageSize int) Pagination {
	if pageSize <= 0 {
		pageSize = 1
	}
	pages := (total + int64(pageSize) - 1) / int64(pageSize)
	return Pagination{Page: page, PageSize: pageSize, Total: total, TotalPages: int(pages)}
}

// File 200 附件下载（诊所 Excel 导出、外联日历）
//
// 文件名按 RFC 5987 编码，保证诊所名等非 ASCII 字符可用。
func File(c *gin.Context, contentType, filename string, data []byte) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(filename)))
	c.Data(http.StatusOK, contentType, data)
}

// ── 错误响应 ──

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, code int, message string) {
	write(c, httpStatus, Response{Code: code, Message: message})
}

// ErrorWithDetails 携带详情（如导入失败的行号、无法解析的日期原文）
func ErrorWithDetails(c *gin.Context, httpStatus int, code int, message, details string) {
	write(c, httpStatus, Response{Code: code, Message: message, Details: details})
}

// BadRequest 400
func BadRequest(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, code int, message string) {
	Error(c, http.StatusUnauthorized, code, message)
}

// Forbidden 403
func Forbidden(c *gin.Context, code int, message string) {
	Error(c, http.StatusForbidden, code, message)
}

// NotFound 404
func NotFound(c *gin.Context, code int, message string) {
	Error(c, http.StatusNotFound, code, message)
}

// Conflict 409（午餐流程冲突、导入进行中）
func Conflict(c *gin.Context, code int, message string) {
	Error(c, http.StatusConflict, code, message)
}

// ServiceUnavailable 503（对象存储 / 发件队列未启用）
func ServiceUnavailable(c *gin.Context, code int, message string) {
	Error(c, http.StatusServiceUnavailable, code, message)
}

// InternalError 500，错误原文只写日志不返回客户端
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, CodeInternal, "服务器内部错误")
}
