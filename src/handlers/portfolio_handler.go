package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/username/finboard/backend/src/logger"
	"github.com/username/finboard/backend/src/models"
	"github.com/username/finboard/backend/src/services"
	"github.com/username/finboard/backend/src/utils"
)

type PortfolioHandler struct {
	portfolioService services.PortfolioService
}

func NewPortfolioHandler(service services.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{portfolioService: service}
}

// HandleGetHoldings serves GET /portfolio/equity.
func (h *PortfolioHandler) HandleGetHoldings(w http.ResponseWriter, r *http.Request) {
	holdings, err := h.portfolioService.Holdings(r.Context())
	if err != nil {
		sendPortfolioError(w, "Error computing holdings", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string][]models.Stock{"stocks": holdings})
}

type tradeRequest struct {
	Qtty  int     `json:"qtty"`
	Price float64 `json:"price"`
	Date  string  `json:"date"`
}

// HandleBuy serves POST /portfolio/equity/{symbol}/buy.
func (h *PortfolioHandler) HandleBuy(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	var body tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.SendJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	if err := h.portfolioService.Buy(r.Context(), symbol, body.Qtty, body.Price, body.Date); err != nil {
		sendPortfolioError(w, "Error recording buy", err)
		return
	}
	utils.SendJSON(w, http.StatusCreated, map[string]string{"message": "buy recorded"})
}

// HandleSell serves POST /portfolio/equity/{symbol}/sell. Selling more than
// is held is a 422.
func (h *PortfolioHandler) HandleSell(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	var body tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.SendJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	profitLoss, err := h.portfolioService.Sell(r.Context(), symbol, body.Qtty, body.Price, body.Date)
	if err != nil {
		sendPortfolioError(w, "Error recording sell", err)
		return
	}
	utils.SendJSON(w, http.StatusCreated, map[string]any{
		"message":     "sell recorded",
		"profit_loss": profitLoss,
	})
}

// HandleUpsertNote serves POST /portfolio/equity/{symbol}.
func (h *PortfolioHandler) HandleUpsertNote(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	var body struct {
		Comment string `json:"comment"`
		Notes   string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.SendJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	if err := h.portfolioService.UpsertNote(r.Context(), symbol, body.Comment, body.Notes); err != nil {
		sendPortfolioError(w, "Error saving note", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string]string{"message": "note saved"})
}

// HandleSetPrice serves POST /portfolio/equity/{symbol}/price.
func (h *PortfolioHandler) HandleSetPrice(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	var body struct {
		Price float64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.SendJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	if err := h.portfolioService.SetLastTradedPrice(r.Context(), symbol, body.Price); err != nil {
		sendPortfolioError(w, "Error updating price", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string]string{"message": "price updated"})
}

// HandleGetTransactions serves GET /portfolio/equity/transactions.
func (h *PortfolioHandler) HandleGetTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.portfolioService.Transactions(r.Context())
	if err != nil {
		sendPortfolioError(w, "Error listing transactions", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string][]models.EquityTransaction{"transactions": txs})
}

// HandleGetSymbolTransactions serves GET /portfolio/equity/{symbol}/transactions.
func (h *PortfolioHandler) HandleGetSymbolTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.portfolioService.SymbolTransactions(r.Context(), r.PathValue("symbol"))
	if err != nil {
		sendPortfolioError(w, "Error listing symbol transactions", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string][]models.EquityTransaction{"transactions": txs})
}

// HandleRecordDividend serves POST /portfolio/equity/{symbol}/dividend.
func (h *PortfolioHandler) HandleRecordDividend(w http.ResponseWriter, r *http.Request) {
	var dividend models.Dividend
	if err := json.NewDecoder(r.Body).Decode(&dividend); err != nil {
		utils.SendJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	dividend.Symbol = r.PathValue("symbol")

	if err := h.portfolioService.RecordDividend(r.Context(), dividend); err != nil {
		sendPortfolioError(w, "Error recording dividend", err)
		return
	}
	utils.SendJSON(w, http.StatusCreated, map[string]string{"message": "dividend recorded"})
}

// HandleGetDividends serves GET /companies/dividend?own=true.
func (h *PortfolioHandler) HandleGetDividends(w http.ResponseWriter, r *http.Request) {
	dividends, err := h.portfolioService.OwnedDividends(r.Context())
	if err != nil {
		sendPortfolioError(w, "Error listing dividends", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string][]models.Dividend{"dividends": dividends})
}

// HandleGetProfitSummary serves GET /portfolio/summary.
func (h *PortfolioHandler) HandleGetProfitSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.portfolioService.ProfitSummary(r.Context())
	if err != nil {
		sendPortfolioError(w, "Error computing profit summary", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string]*models.EquityProfitSummary{"equity": summary})
}

func (h *PortfolioHandler) HandleGetFixedDeposits(w http.ResponseWriter, r *http.Request) {
	fds, err := h.portfolioService.FixedDeposits(r.Context())
	if err != nil {
		sendPortfolioError(w, "Error listing fixed deposits", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, fds)
}

func (h *PortfolioHandler) HandleAddFixedDeposit(w http.ResponseWriter, r *http.Request) {
	var fd models.FixedDeposit
	if err := json.NewDecoder(r.Body).Decode(&fd); err != nil {
		utils.SendJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	created, err := h.portfolioService.AddFixedDeposit(r.Context(), fd)
	if err != nil {
		sendPortfolioError(w, "Error adding fixed deposit", err)
		return
	}
	utils.SendJSON(w, http.StatusCreated, created)
}

func (h *PortfolioHandler) HandleGetBonds(w http.ResponseWriter, r *http.Request) {
	bonds, err := h.portfolioService.Bonds(r.Context())
	if err != nil {
		sendPortfolioError(w, "Error listing bonds", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, bonds)
}

func (h *PortfolioHandler) HandleAddBond(w http.ResponseWriter, r *http.Request) {
	var bond models.Bond
	if err := json.NewDecoder(r.Body).Decode(&bond); err != nil {
		utils.SendJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	created, err := h.portfolioService.AddBond(r.Context(), bond)
	if err != nil {
		sendPortfolioError(w, "Error adding bond", err)
		return
	}
	utils.SendJSON(w, http.StatusCreated, created)
}

func (h *PortfolioHandler) HandleGetIndexFunds(w http.ResponseWriter, r *http.Request) {
	funds, err := h.portfolioService.IndexFunds(r.Context())
	if err != nil {
		sendPortfolioError(w, "Error listing index funds", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, funds)
}

func (h *PortfolioHandler) HandleAddIndexFund(w http.ResponseWriter, r *http.Request) {
	var fund models.IndexFund
	if err := json.NewDecoder(r.Body).Decode(&fund); err != nil {
		utils.SendJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	created, err := h.portfolioService.AddIndexFund(r.Context(), fund)
	if err != nil {
		sendPortfolioError(w, "Error adding index fund", err)
		return
	}
	utils.SendJSON(w, http.StatusCreated, created)
}

func (h *PortfolioHandler) HandleGetFXDeposits(w http.ResponseWriter, r *http.Request) {
	deposits, err := h.portfolioService.FXDeposits(r.Context())
	if err != nil {
		sendPortfolioError(w, "Error listing fx deposits", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, deposits)
}

func (h *PortfolioHandler) HandleAddFXDeposit(w http.ResponseWriter, r *http.Request) {
	var deposit models.FXDeposit
	if err := json.NewDecoder(r.Body).Decode(&deposit); err != nil {
		utils.SendJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	created, err := h.portfolioService.AddFXDeposit(r.Context(), deposit)
	if err != nil {
		sendPortfolioError(w, "Error adding fx deposit", err)
		return
	}
	utils.SendJSON(w, http.StatusCreated, created)
}

func (h *PortfolioHandler) HandleGetOtherIncome(w http.ResponseWriter, r *http.Request) {
	incomes, err := h.portfolioService.OtherIncome(r.Context())
	if err != nil {
		sendPortfolioError(w, "Error listing other income", err)
		return
	}
	utils.SendJSON(w, http.StatusOK, incomes)
}

func (h *PortfolioHandler) HandleAddOtherIncome(w http.ResponseWriter, r *http.Request) {
	var income models.OtherIncome
	if err := json.NewDecoder(r.Body).Decode(&income); err != nil {
		utils.SendJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	created, err := h.portfolioService.AddOtherIncome(r.Context(), income)
	if err != nil {
		sendPortfolioError(w, "Error adding other income", err)
		return
	}
	utils.SendJSON(w, http.StatusCreated, created)
}

func sendPortfolioError(w http.ResponseWriter, logMsg string, err error) {
	switch {
	case errors.Is(err, services.ErrInsufficientQty):
		logger.L.Warn(logMsg, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, services.ErrUnknownSymbol):
		logger.L.Warn(logMsg, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrInvalidInput):
		logger.L.Warn(logMsg, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		logger.L.Error(logMsg, "error", err)
		utils.SendJSONError(w, "An internal error occurred. Please try again later.", http.StatusInternalServerError)
	}
}
