package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/username/finboard/backend/src/config"
	"github.com/username/finboard/backend/src/logger"
	"github.com/username/finboard/backend/src/models"
	"github.com/username/finboard/backend/src/security/validation"
	"github.com/username/finboard/backend/src/services"
	"github.com/username/finboard/backend/src/utils"
)

type ExpenseHandler struct {
	expenseService services.ExpenseService
}

func NewExpenseHandler(service services.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: service}
}

// HandleListExpenses serves GET /expense?year&month&page.
func (h *ExpenseHandler) HandleListExpenses(w http.ResponseWriter, r *http.Request) {
	year, month, err := yearMonthParams(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		page, err = strconv.Atoi(pageStr)
		if err != nil {
			utils.SendJSONError(w, "page must be an integer", http.StatusBadRequest)
			return
		}
	}

	result, err := h.expenseService.ListExpenses(r.Context(), year, month, page)
	if err != nil {
		sendExpenseError(w, "Error listing expenses", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, result)
}

// HandleSummary serves GET /expense/summary, the full aggregation tree.
func (h *ExpenseHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.expenseService.Summary(r.Context())
	if err != nil {
		sendExpenseError(w, "Error building expense summary", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, summary)
}

// HandleImportRecords serves POST /expense with a JSON body of pre-parsed rows.
func (h *ExpenseHandler) HandleImportRecords(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Year    int                    `json:"year"`
		Month   int                    `json:"month"`
		Records []models.ExpenseRecord `json:"records"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.SendJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	result, err := h.expenseService.ImportRecords(r.Context(), body.Year, body.Month, body.Records)
	if err != nil {
		sendExpenseError(w, "Error importing expense records", err)
		return
	}
	utils.SendJSON(w, http.StatusCreated, result)
}

// HandleUpload serves POST /expense/upload: a multipart CSV plus year and
// month form fields. The file passes the content-type allow-list and a
// magic-byte sniff before it reaches the parser.
func (h *ExpenseHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	year, err := strconv.Atoi(r.FormValue("year"))
	if err != nil {
		utils.SendJSONError(w, "year form field must be an integer", http.StatusBadRequest)
		return
	}
	month, err := strconv.Atoi(r.FormValue("month"))
	if err != nil {
		utils.SendJSONError(w, "month form field must be an integer", http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(clientContentType); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := validation.ValidateFileContentByMagicBytes(file); err != nil {
		logger.L.Warn("File content validation failed", "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	logger.L.Info("Processing expense upload", "filename", fileHeader.Filename, "year", year, "month", month)
	result, err := h.expenseService.ImportExpenses(file, year, month)
	if err != nil {
		sendExpenseError(w, "Error importing expense file", err)
		return
	}
	utils.SendJSON(w, http.StatusCreated, result)
}

// HandleImportedMonths serves GET /expense/admin/summary.
func (h *ExpenseHandler) HandleImportedMonths(w http.ResponseWriter, r *http.Request) {
	months, err := h.expenseService.ImportedMonths(r.Context())
	if err != nil {
		sendExpenseError(w, "Error listing imported months", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, months)
}

// HandleDeleteMonth serves DELETE /expense/admin?year&month.
func (h *ExpenseHandler) HandleDeleteMonth(w http.ResponseWriter, r *http.Request) {
	year, month, err := yearMonthParams(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.expenseService.DeleteMonth(r.Context(), year, month); err != nil {
		sendExpenseError(w, "Error deleting imported month", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string]string{"message": "month deleted"})
}

func (h *ExpenseHandler) HandleGetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.expenseService.Categories(r.Context())
	if err != nil {
		sendExpenseError(w, "Error listing categories", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, categories)
}

func (h *ExpenseHandler) HandleAddCategory(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string `json:"name"`
		Subcategory string `json:"subcategory"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.SendJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	category, err := h.expenseService.AddCategory(r.Context(), body.Name, body.Subcategory)
	if err != nil {
		sendExpenseError(w, "Error adding category", err)
		return
	}
	utils.SendJSON(w, http.StatusCreated, category)
}

func (h *ExpenseHandler) HandleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	var body struct {
		Name        string `json:"name"`
		Subcategory string `json:"subcategory"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.SendJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	if err := h.expenseService.UpdateCategory(r.Context(), id, body.Name, body.Subcategory); err != nil {
		sendExpenseError(w, "Error updating category", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string]string{"message": "category updated"})
}

func (h *ExpenseHandler) HandleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.expenseService.DeleteCategory(r.Context(), id); err != nil {
		sendExpenseError(w, "Error deleting category", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
}

func yearMonthParams(r *http.Request) (int, int, error) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		return 0, 0, fmt.Errorf("year query parameter must be an integer")
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		return 0, 0, fmt.Errorf("month query parameter must be an integer")
	}
	return year, month, nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("id path segment must be an integer")
	}
	return id, nil
}

// sendExpenseError maps service sentinels onto HTTP statuses; anything
// unrecognized is a 500 with a generic message.
func sendExpenseError(w http.ResponseWriter, logMsg string, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrParsingFailed):
		logger.L.Warn(logMsg, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrMonthNotImported):
		logger.L.Warn(logMsg, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusNotFound)
	default:
		logger.L.Error(logMsg, "error", err)
		utils.SendJSONError(w, "An internal error occurred. Please try again later.", http.StatusInternalServerError)
	}
}
