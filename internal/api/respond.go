package api

import "github.com/labstack/echo/v4"

// Envelope は成功レスポンスの統一フォーマット
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// PagedEnvelope はページネーション付きレスポンス
type PagedEnvelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination はページネーション情報
type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
}

// OK は成功レスポンスを返す
func OK(c echo.Context, status int, data interface{}, message string) error {
	return c.JSON(status, Envelope{Success: true, Data: data, Message: message})
}

// OKPaged はページネーション付き成功レスポンスを返す
func OKPaged(c echo.Context, status int, data interface{}, p *Pagination) error {
	return c.JSON(status, PagedEnvelope{Success: true, Data: data, Pagination: p})
}
