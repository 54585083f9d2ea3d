package http

import (
	"bytes"
	"context"
	"net/http"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
)

const (
	tmplIndex = "index.html"
	tmplTable = "expense_table"
)

// tableRow is one rendered row. ID is the record id carried alongside the
// display strings; the delete flow reads it back from the row's radio value.
type tableRow struct {
	ID          core.ExpenseID
	Description string
	Amount      string
	Date        string
}

type formValues struct {
	Description string
	Amount      string
	Date        string
}

type pageData struct {
	Rows  []tableRow
	Form  formValues
	Error string
}

// loadTable rebuilds the visible table from a full read of storage. It is
// the only place rows are produced; the rows are never patched in place.
func (s *Server) loadTable(ctx context.Context) ([]tableRow, error) {
	items, err := s.gateway.List(ctx)
	rows := make([]tableRow, 0, len(items))
	for _, e := range items {
		rows = append(rows, tableRow{
			ID:          e.ID,
			Description: e.Description,
			Amount:      core.FormatAmount(e.Amount),
			Date:        e.Date,
		})
	}
	return rows, err
}

// page builds the full page data, merging a failed refresh into the
// notification slot when no other message is pending.
func (s *Server) page(ctx context.Context, form formValues, message string) pageData {
	rows, err := s.loadTable(ctx)
	if err != nil && message == "" {
		message = msgStorageRead
	}
	return pageData{Rows: rows, Form: form, Error: message}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	logger := applog.FromContext(r.Context())
	if s.templates == nil {
		logger.ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		logger.ErrorContext(r.Context(), "Template execution failed",
			applog.FieldError, err,
			applog.FieldOperation, applog.OpRender,
			"template", name)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderTablePartial answers a script request with the rebuilt table and the
// given triggers.
func (s *Server) renderTablePartial(w http.ResponseWriter, r *http.Request, resp *HTMXResponseBuilder) {
	rows, err := s.loadTable(r.Context())
	if _, pending := resp.triggers[triggerNotification]; err != nil && !pending {
		resp.TriggerErrorNotification(msgStorageRead)
	}
	if s.templates == nil {
		InternalServerError("templates not loaded").Write(w)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, tmplTable, pageData{Rows: rows}); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			applog.FieldError, err, applog.FieldOperation, applog.OpRender, "template", tmplTable)
		InternalServerError("render failed").Write(w)
		return
	}
	resp.BodyHTML(buf.Bytes()).Write(w)
}

// rejectInput reports a user input error without touching storage.
func (s *Server) rejectInput(w http.ResponseWriter, r *http.Request, form formValues, err error) {
	msg := userMessage(err)
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Rejected expense input",
		applog.FieldOperation, applog.OpValidate,
		applog.FieldError, err)

	if isHTMX(r) {
		NewHTMXResponse().
			Status(http.StatusUnprocessableEntity).
			TriggerErrorNotification(msg).
			Write(w)
		return
	}
	s.render(w, r, http.StatusUnprocessableEntity, tmplIndex, s.page(r.Context(), form, msg))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	s.render(w, r, http.StatusOK, tmplIndex, s.page(r.Context(), formValues{}, ""))
}

func (s *Server) handleExpenseTable(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	s.renderTablePartial(w, r, NewHTMXResponse())
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	form := formValues{
		Description: r.PostForm.Get("description"),
		Amount:      r.PostForm.Get("amount"),
		Date:        r.PostForm.Get("date"),
	}
	input, err := core.ParseExpenseInput(form.Description, form.Amount, form.Date)
	if err != nil {
		s.rejectInput(w, r, form, err)
		return
	}

	logger := applog.FromContext(r.Context())
	id, err := s.gateway.Add(r.Context(), input)
	if err != nil {
		// Only reached when storage errors are surfaced. The table is still
		// refreshed so it shows what storage actually holds.
		if isHTMX(r) {
			s.renderTablePartial(w, r, NewHTMXResponse().TriggerErrorNotification(msgStorageFailed))
			return
		}
		s.render(w, r, http.StatusInternalServerError, tmplIndex, s.page(r.Context(), form, msgStorageFailed))
		return
	}

	logger.InfoContext(r.Context(), "Expense added",
		applog.FieldExpenseID, int64(id),
		applog.FieldExpenseDesc, input.Description,
		applog.FieldAmount, input.Amount,
		applog.FieldDate, input.Date)

	if isHTMX(r) {
		s.renderTablePartial(w, r, NewHTMXResponse().
			TriggerExpenseCreated(id).
			TriggerFormReset())
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	id, err := core.ParseExpenseID(r.PostForm.Get("id"))
	if err != nil {
		s.rejectInput(w, r, formValues{}, err)
		return
	}

	if err := s.gateway.Delete(r.Context(), id); err != nil {
		if isHTMX(r) {
			s.renderTablePartial(w, r, NewHTMXResponse().TriggerErrorNotification(msgStorageFailed))
			return
		}
		s.render(w, r, http.StatusInternalServerError, tmplIndex, s.page(r.Context(), formValues{}, msgStorageFailed))
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Expense deleted",
		applog.FieldExpenseID, int64(id))

	if isHTMX(r) {
		s.renderTablePartial(w, r, NewHTMXResponse().TriggerExpenseDeleted(id))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
