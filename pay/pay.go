package pay

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"nova/db"
	"nova/models"
	"nova/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListPayments handles GET /api/payments, optionally filtered by memberId.
func ListPayments(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter := bson.M{}
	if v := r.URL.Query().Get("memberId"); v != "" {
		filter["memberId"] = v
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cur, err := db.PaymentsCollection.Find(ctx, filter,
		options.Find().SetSort(bson.M{"createdAt": -1}).SetLimit(200))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer cur.Close(ctx)

	var payments []models.Payment
	for cur.Next(ctx) {
		var p models.Payment
		if err := cur.Decode(&p); err == nil {
			payments = append(payments, p)
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"payments": payments})
}

// ListPlans handles GET /api/plans.
func ListPlans(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cur, err := db.PlansCollection.Find(ctx, bson.M{})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer cur.Close(ctx)

	var plans []models.Plan
	for cur.Next(ctx) {
		var p models.Plan
		if err := cur.Decode(&p); err == nil {
			plans = append(plans, p)
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{"plans": plans})
}

// PrintReceipt handles GET /api/payments/:id/receipt and streams a PDF.
func PrintReceipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var payment models.Payment
	err := db.PaymentsCollection.FindOne(ctx, bson.M{"id": ps.ByName("id")}).Decode(&payment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		http.Error(w, "payment not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	var member models.Member
	memberName := payment.MemberID
	if err := db.UserCollection.FindOne(ctx, bson.M{"userid": payment.MemberID}).Decode(&member); err == nil {
		memberName = member.FullName
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Payment Receipt")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Receipt ID: %s", payment.ID))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Member: %s", memberName))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Amount: %.2f %s", payment.Amount, payment.Currency))
	pdf.Ln(8)
	if payment.PlanName != "" {
		pdf.Cell(0, 10, fmt.Sprintf("Plan: %s (%s)", payment.PlanName, payment.Cycle))
		pdf.Ln(8)
	}
	if payment.Method != "" {
		pdf.Cell(0, 10, fmt.Sprintf("Method: %s", payment.Method))
		pdf.Ln(8)
	}
	pdf.Cell(0, 10, fmt.Sprintf("Date: %s", payment.CreatedAt.Format("2006-01-02 15:04")))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		http.Error(w, "Failed to generate PDF", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=receipt-"+payment.ID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
