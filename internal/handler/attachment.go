package handler

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/munsif3/family-expense-tracker-sub001/internal/attachment"
	"github.com/munsif3/family-expense-tracker-sub001/internal/auth"
	"github.com/munsif3/family-expense-tracker-sub001/internal/model"
	"github.com/munsif3/family-expense-tracker-sub001/internal/store"
)

const maxAttachmentSize = 10 << 20 // 10 MiB

type AttachmentHandler struct {
	attachments *store.AttachmentStore
	txns        *store.TransactionStore
	storage     *attachment.Storage
	logger      *slog.Logger
}

func NewAttachmentHandler(as *store.AttachmentStore, ts *store.TransactionStore, st *attachment.Storage, logger *slog.Logger) *AttachmentHandler {
	return &AttachmentHandler{attachments: as, txns: ts, storage: st, logger: logger}
}

// Upload stores a receipt file for a transaction. The multipart field name
// is "file".
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "attachment storage is not configured")
		return
	}

	txnID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	sc := auth.HouseholdScope(r.Context())
	txn, err := h.txns.GetByID(sc, txnID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get transaction")
		return
	}
	if txn == nil {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAttachmentSize)
	if err := r.ParseMultipartForm(maxAttachmentSize); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or invalid form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	householdID := auth.HouseholdID(r.Context())
	key := attachment.NewObjectKey(householdID, header.Filename)

	if err := h.storage.Put(r.Context(), key, contentType, bytes.NewReader(data)); err != nil {
		h.logger.Error("upload attachment", "error", err, "key", key)
		writeError(w, http.StatusBadGateway, "failed to store file")
		return
	}

	att, err := h.attachments.Create(model.Attachment{
		TransactionID: txnID,
		HouseholdID:   householdID,
		FileName:      header.Filename,
		ContentType:   contentType,
		SizeBytes:     int64(len(data)),
		ObjectKey:     key,
	})
	if err != nil {
		h.logger.Error("create attachment record", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save attachment")
		return
	}

	writeJSON(w, http.StatusCreated, att)
}

func (h *AttachmentHandler) List(w http.ResponseWriter, r *http.Request) {
	txnID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	atts, err := h.attachments.ListByTransaction(auth.HouseholdScope(r.Context()), txnID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list attachments")
		return
	}
	if atts == nil {
		atts = []model.Attachment{}
	}
	writeJSON(w, http.StatusOK, atts)
}

// Download streams the receipt file back to the client.
func (h *AttachmentHandler) Download(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "attachment storage is not configured")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("attachment_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid attachment_id")
		return
	}

	att, err := h.attachments.GetByID(auth.HouseholdScope(r.Context()), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get attachment")
		return
	}
	if att == nil {
		writeError(w, http.StatusNotFound, "attachment not found")
		return
	}

	body, contentType, err := h.storage.Get(r.Context(), att.ObjectKey)
	if err != nil {
		h.logger.Error("fetch attachment", "error", err, "key", att.ObjectKey)
		writeError(w, http.StatusBadGateway, "failed to fetch file")
		return
	}
	defer body.Close()

	if contentType == "" {
		contentType = att.ContentType
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+att.FileName+`"`)
	io.Copy(w, body)
}

func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("attachment_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid attachment_id")
		return
	}

	sc := auth.HouseholdScope(r.Context())
	att, err := h.attachments.GetByID(sc, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get attachment")
		return
	}
	if att == nil {
		writeError(w, http.StatusNotFound, "attachment not found")
		return
	}

	if err := h.attachments.Delete(sc, id); err != nil {
		h.logger.Error("delete attachment record", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete attachment")
		return
	}

	// Best effort: the DB record is authoritative, orphaned objects are
	// harmless.
	if h.storage != nil {
		if err := h.storage.Delete(r.Context(), att.ObjectKey); err != nil {
			h.logger.Warn("delete attachment object", "error", err, "key", att.ObjectKey)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}
