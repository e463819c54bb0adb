package restapi

import (
	"errors"
	"net/http"

	"token_transfer/internal/app/port"
	"token_transfer/internal/app/service"
	"token_transfer/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Data          any    `json:"data,omitempty"`
	Error         string `json:"error,omitempty"`
	StatusMessage string `json:"status_message"`
}

// TokensResponse is the token picker view.
type TokensResponse struct {
	Options   []entity.TokenOption `json:"options"`
	IsLoading bool                 `json:"isLoading"`
	Error     string               `json:"error,omitempty"`
}

// TransferFormUpdate is a partial update of the transfer form. Absent fields are left unchanged.
type TransferFormUpdate struct {
	Recipient    *string `json:"recipient"`
	Amount       *string `json:"amount"`
	Mode         *string `json:"mode"`
	TokenAddress *string `json:"tokenAddress"`
	SearchQuery  *string `json:"searchQuery"`
}

// TransferHandler serves the wallet session, balances, token catalog and transfer form.
type TransferHandler struct {
	session  port.SessionProvider
	balances port.BalanceAggregator
	catalog  port.TokenCatalog
	workflow *service.TransferWorkflow
	logger   port.Logger
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(
	session port.SessionProvider,
	balances port.BalanceAggregator,
	catalog port.TokenCatalog,
	workflow *service.TransferWorkflow,
	logger port.Logger,
) *TransferHandler {
	return &TransferHandler{
		session:  session,
		balances: balances,
		catalog:  catalog,
		workflow: workflow,
		logger:   logger,
	}
}

// GetSessionHandler returns the connected account and chain.
func (h *TransferHandler) GetSessionHandler(c *gin.Context) {
	c.JSON(http.StatusOK, APIResponse{Data: h.session.Session(), StatusMessage: "ok"})
}

// GetBalancesHandler returns the last aggregated balances.
func (h *TransferHandler) GetBalancesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, APIResponse{Data: h.balances.Snapshot(), StatusMessage: "ok"})
}

// RefreshBalancesHandler re-resolves every balance of the connected account.
func (h *TransferHandler) RefreshBalancesHandler(c *gin.Context) {
	session := h.session.Session()
	if !session.Connected {
		c.JSON(http.StatusConflict, APIResponse{Error: entity.ErrNotConnected.Error(), StatusMessage: "Wallet not connected."})
		return
	}
	snapshot := h.balances.Refresh(c.Request.Context(), session.Account, session.ChainID)
	c.JSON(http.StatusOK, APIResponse{Data: snapshot, StatusMessage: "Balances refreshed."})
}

// GetTokensHandler returns the filtered token catalog with selection flags.
// The "query" parameter overrides the form's search query.
func (h *TransferHandler) GetTokensHandler(c *gin.Context) {
	state := h.workflow.State()
	query, ok := c.GetQuery("query")
	if !ok {
		query = state.SearchQuery
	}
	c.JSON(http.StatusOK, APIResponse{Data: h.tokensView(query, state.SelectedToken), StatusMessage: "ok"})
}

// RefetchTokensHandler reloads the token catalog.
func (h *TransferHandler) RefetchTokensHandler(c *gin.Context) {
	h.catalog.Refetch(c.Request.Context())
	state := h.workflow.State()
	c.JSON(http.StatusOK, APIResponse{Data: h.tokensView(state.SearchQuery, state.SelectedToken), StatusMessage: "Token catalog reloaded."})
}

func (h *TransferHandler) tokensView(query, selected string) TokensResponse {
	catalog := h.catalog.List()
	balances := h.balances.Snapshot()
	return TokensResponse{
		Options:   service.TokenOptions(service.FilterTokens(catalog.Tokens, query), balances.Tokens, h.session.Session().ChainID, selected),
		IsLoading: catalog.IsLoading,
		Error:     catalog.Error,
	}
}

// GetTransferHandler returns the transfer form and submission state.
func (h *TransferHandler) GetTransferHandler(c *gin.Context) {
	c.JSON(http.StatusOK, APIResponse{Data: h.workflow.State(), StatusMessage: "ok"})
}

// UpdateTransferHandler applies a partial form update.
func (h *TransferHandler) UpdateTransferHandler(c *gin.Context) {
	var upd TransferFormUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Error: err.Error(), StatusMessage: "Invalid form update."})
		return
	}
	if upd.Mode != nil {
		switch entity.TokenMode(*upd.Mode) {
		case entity.ModeNative, entity.ModeERC20:
		default:
			c.JSON(http.StatusBadRequest, APIResponse{Error: "mode must be \"native\" or \"erc20\"", StatusMessage: "Invalid form update."})
			return
		}
	}
	if upd.TokenAddress != nil {
		if *upd.TokenAddress == "" {
			h.workflow.ClearToken()
		} else {
			h.workflow.SelectToken(*upd.TokenAddress)
		}
	}
	if upd.Mode != nil {
		h.workflow.SetMode(entity.TokenMode(*upd.Mode))
	}
	if upd.Recipient != nil {
		h.workflow.SetRecipient(*upd.Recipient)
	}
	if upd.Amount != nil {
		h.workflow.SetAmount(*upd.Amount)
	}
	if upd.SearchQuery != nil {
		h.workflow.SetSearchQuery(*upd.SearchQuery)
	}
	c.JSON(http.StatusOK, APIResponse{Data: h.workflow.State(), StatusMessage: "Form updated."})
}

// SubmitTransferHandler submits the current form.
func (h *TransferHandler) SubmitTransferHandler(c *gin.Context) {
	err := h.workflow.Submit(c.Request.Context())
	state := h.workflow.State()

	switch {
	case err == nil:
		c.JSON(http.StatusAccepted, APIResponse{Data: state, StatusMessage: "Transfer submitted."})
	case errors.Is(err, entity.ErrSubmitDisabled):
		c.JSON(http.StatusConflict, APIResponse{Data: state, Error: err.Error(), StatusMessage: "Submit is disabled."})
	case entity.IsValidationError(err):
		c.JSON(http.StatusUnprocessableEntity, APIResponse{Data: state, Error: state.Error, StatusMessage: "Transfer rejected."})
	default:
		h.logger.Warn("Transfer submission failed", "error", err)
		c.JSON(http.StatusBadGateway, APIResponse{Data: state, Error: state.Error, StatusMessage: "Transfer failed."})
	}
}

// ResetTransferHandler clears the outcome of the last submission.
func (h *TransferHandler) ResetTransferHandler(c *gin.Context) {
	h.workflow.Reset()
	c.JSON(http.StatusOK, APIResponse{Data: h.workflow.State(), StatusMessage: "Transfer state reset."})
}
