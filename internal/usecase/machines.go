package usecase

import "github.com/polkiloo/dealerflow/internal/domain/model"

func (u *WorkflowUseCase) buildMachines() map[model.ResourceKind]*Machine {
	machines := []*Machine{
		u.purchaseOrderMachine(),
		u.salesOrderMachine(),
		serviceOrderMachine(),
		workOrderMachine(),
		u.transportOrderMachine(),
		u.documentMachine(),
		u.quoteMachine(),
	}
	out := make(map[model.ResourceKind]*Machine, len(machines))
	for _, m := range machines {
		out[m.Kind] = m
	}
	return out
}

// withAfter appends step to every rule, including the withdraw back to Concept.
func withAfter(step Step, rules ...Rule) []Rule {
	for i := range rules {
		rules[i].After = append(rules[i].After, step)
	}
	return rules
}

func (u *WorkflowUseCase) purchaseOrderMachine() *Machine {
	names := map[model.Status]string{
		model.PurchaseOrderConcept:                "Concept",
		model.PurchaseOrderSubmitted:              "Submitted",
		model.PurchaseOrderApproved:               "Approved",
		model.PurchaseOrderSentToSupplier:         "Sent_to_supplier",
		model.PurchaseOrderUploadedSignedContract: "Uploaded_signed_contract",
		model.PurchaseOrderDownPaymentDone:        "Down_payment_done",
		model.PurchaseOrderPaymentDone:            "Payment_done",
		model.PurchaseOrderCompleted:              "Completed",
		model.PurchaseOrderRejected:               "Rejected",
		model.PurchaseOrderCancelled:              "Cancelled",
	}
	inFlight := []model.Status{
		model.PurchaseOrderSubmitted,
		model.PurchaseOrderApproved,
		model.PurchaseOrderSentToSupplier,
		model.PurchaseOrderUploadedSignedContract,
		model.PurchaseOrderDownPaymentDone,
	}
	rules := withAfter(u.resolveOrderStock,
		Rule{To: model.PurchaseOrderConcept, From: []model.Status{model.PurchaseOrderSubmitted}, Verb: "submit"},
		Rule{To: model.PurchaseOrderSubmitted, From: []model.Status{model.PurchaseOrderConcept}, Verb: "submit", Require: []Step{requireVehicles}},
		Rule{To: model.PurchaseOrderApproved, From: []model.Status{model.PurchaseOrderSubmitted}, Verb: "approve"},
		Rule{To: model.PurchaseOrderRejected, From: []model.Status{model.PurchaseOrderSubmitted}, Verb: "reject"},
		Rule{
			To:     model.PurchaseOrderSentToSupplier,
			From:   []model.Status{model.PurchaseOrderApproved},
			Verb:   "send",
			Before: []Step{u.renderDocument("purchase-order", "purchase_order_pdf")},
		},
		Rule{
			To:      model.PurchaseOrderUploadedSignedContract,
			From:    []model.Status{model.PurchaseOrderSentToSupplier},
			Verb:    "upload-contract",
			Require: []Step{requireFiles(model.FileGroupSignedContract)},
		},
		Rule{
			To:      model.PurchaseOrderDownPaymentDone,
			From:    []model.Status{model.PurchaseOrderUploadedSignedContract},
			Verb:    "register-down-payment",
			Require: []Step{requireDownPayment},
		},
		Rule{
			To:      model.PurchaseOrderPaymentDone,
			From:    []model.Status{model.PurchaseOrderUploadedSignedContract, model.PurchaseOrderDownPaymentDone},
			Verb:    "register-payment",
			Require: []Step{requirePaymentAmount},
		},
		Rule{To: model.PurchaseOrderCompleted, From: []model.Status{model.PurchaseOrderPaymentDone}, Verb: "complete"},
		Rule{To: model.PurchaseOrderCancelled, From: inFlight, Verb: "cancel"},
	)
	return NewMachine(model.ResourcePurchaseOrder, names,
		[]model.Status{model.PurchaseOrderCompleted, model.PurchaseOrderRejected, model.PurchaseOrderCancelled},
		rules...)
}

func (u *WorkflowUseCase) salesOrderMachine() *Machine {
	names := map[model.Status]string{
		model.SalesOrderConcept:                "Concept",
		model.SalesOrderSubmitted:              "Submitted",
		model.SalesOrderApproved:               "Approved",
		model.SalesOrderSentToBuyer:            "Sent_to_buyer",
		model.SalesOrderUploadedSignedContract: "Uploaded_signed_contract",
		model.SalesOrderDownPaymentDone:        "Down_payment_done",
		model.SalesOrderCompleted:              "Completed",
		model.SalesOrderRejected:               "Rejected",
		model.SalesOrderCancelled:              "Cancelled",
	}
	inFlight := []model.Status{
		model.SalesOrderSubmitted,
		model.SalesOrderApproved,
		model.SalesOrderSentToBuyer,
		model.SalesOrderUploadedSignedContract,
		model.SalesOrderDownPaymentDone,
	}
	rules := withAfter(u.resolveOrderStock,
		Rule{To: model.SalesOrderConcept, From: []model.Status{model.SalesOrderSubmitted}, Verb: "submit"},
		Rule{To: model.SalesOrderSubmitted, From: []model.Status{model.SalesOrderConcept}, Verb: "submit", Require: []Step{requireVehicles}},
		Rule{
			To:     model.SalesOrderApproved,
			From:   []model.Status{model.SalesOrderSubmitted},
			Verb:   "approve",
			Before: []Step{u.runCalculation},
		},
		Rule{To: model.SalesOrderRejected, From: []model.Status{model.SalesOrderSubmitted}, Verb: "reject"},
		Rule{
			To:     model.SalesOrderSentToBuyer,
			From:   []model.Status{model.SalesOrderApproved},
			Verb:   "send",
			Before: []Step{u.renderDocument("sales-order", "sales_order_pdf")},
		},
		Rule{
			To:      model.SalesOrderUploadedSignedContract,
			From:    []model.Status{model.SalesOrderSentToBuyer},
			Verb:    "upload-contract",
			Require: []Step{requireFiles(model.FileGroupSignedContract)},
		},
		Rule{
			To:      model.SalesOrderDownPaymentDone,
			From:    []model.Status{model.SalesOrderUploadedSignedContract},
			Verb:    "register-down-payment",
			Require: []Step{requireDownPayment},
		},
		Rule{
			To:   model.SalesOrderCompleted,
			From: []model.Status{model.SalesOrderUploadedSignedContract, model.SalesOrderDownPaymentDone},
			Verb: "complete",
		},
		Rule{To: model.SalesOrderCancelled, From: inFlight, Verb: "cancel"},
	)
	return NewMachine(model.ResourceSalesOrder, names,
		[]model.Status{model.SalesOrderCompleted, model.SalesOrderRejected, model.SalesOrderCancelled},
		rules...)
}

func serviceOrderMachine() *Machine {
	names := map[model.Status]string{
		model.ServiceOrderConcept:   "Concept",
		model.ServiceOrderSubmitted: "Submitted",
		model.ServiceOrderApproved:  "Approved",
		model.ServiceOrderCompleted: "Completed",
		model.ServiceOrderRejected:  "Rejected",
		model.ServiceOrderCancelled: "Cancelled",
	}
	return NewMachine(model.ResourceServiceOrder, names,
		[]model.Status{model.ServiceOrderCompleted, model.ServiceOrderRejected, model.ServiceOrderCancelled},
		Rule{To: model.ServiceOrderConcept, From: []model.Status{model.ServiceOrderSubmitted}, Verb: "submit"},
		Rule{To: model.ServiceOrderSubmitted, From: []model.Status{model.ServiceOrderConcept}, Verb: "submit", Require: []Step{requireVehiclesOrServices}},
		Rule{To: model.ServiceOrderApproved, From: []model.Status{model.ServiceOrderSubmitted}, Verb: "approve"},
		Rule{To: model.ServiceOrderRejected, From: []model.Status{model.ServiceOrderSubmitted}, Verb: "reject"},
		Rule{To: model.ServiceOrderCompleted, From: []model.Status{model.ServiceOrderApproved}, Verb: "complete"},
		Rule{To: model.ServiceOrderCancelled, From: []model.Status{model.ServiceOrderSubmitted, model.ServiceOrderApproved}, Verb: "cancel"},
	)
}

func workOrderMachine() *Machine {
	names := map[model.Status]string{
		model.WorkOrderConcept:   "Concept",
		model.WorkOrderSubmitted: "Submitted",
		model.WorkOrderApproved:  "Approved",
		model.WorkOrderCompleted: "Completed",
		model.WorkOrderCancelled: "Cancelled",
	}
	return NewMachine(model.ResourceWorkOrder, names,
		[]model.Status{model.WorkOrderCompleted, model.WorkOrderCancelled},
		Rule{To: model.WorkOrderConcept, From: []model.Status{model.WorkOrderSubmitted}, Verb: "submit"},
		Rule{To: model.WorkOrderSubmitted, From: []model.Status{model.WorkOrderConcept}, Verb: "submit", Require: []Step{requireVehiclesOrItems}},
		Rule{To: model.WorkOrderApproved, From: []model.Status{model.WorkOrderSubmitted}, Verb: "approve"},
		Rule{To: model.WorkOrderCompleted, From: []model.Status{model.WorkOrderApproved}, Verb: "complete"},
		Rule{To: model.WorkOrderCancelled, From: []model.Status{model.WorkOrderSubmitted, model.WorkOrderApproved}, Verb: "cancel"},
	)
}

func (u *WorkflowUseCase) transportOrderMachine() *Machine {
	names := map[model.Status]string{
		model.TransportOrderConcept:                "Concept",
		model.TransportOrderSubmitted:              "Submitted",
		model.TransportOrderApproved:               "Approved",
		model.TransportOrderSentToTransportCompany: "Sent_to_transport_company",
		model.TransportOrderCompleted:              "Completed",
		model.TransportOrderCancelled:              "Cancelled",
	}
	return NewMachine(model.ResourceTransportOrder, names,
		[]model.Status{model.TransportOrderCompleted, model.TransportOrderCancelled},
		Rule{To: model.TransportOrderConcept, From: []model.Status{model.TransportOrderSubmitted}, Verb: "submit"},
		Rule{To: model.TransportOrderSubmitted, From: []model.Status{model.TransportOrderConcept}, Verb: "submit", Require: []Step{requireVehicles}},
		Rule{To: model.TransportOrderApproved, From: []model.Status{model.TransportOrderSubmitted}, Verb: "approve"},
		Rule{
			To:     model.TransportOrderSentToTransportCompany,
			From:   []model.Status{model.TransportOrderApproved},
			Verb:   "send",
			Before: []Step{u.renderDocument("transport-order", "transport_order_pdf")},
		},
		Rule{To: model.TransportOrderCompleted, From: []model.Status{model.TransportOrderSentToTransportCompany}, Verb: "complete"},
		Rule{
			To:   model.TransportOrderCancelled,
			From: []model.Status{model.TransportOrderSubmitted, model.TransportOrderApproved, model.TransportOrderSentToTransportCompany},
			Verb: "cancel",
		},
	)
}

func (u *WorkflowUseCase) documentMachine() *Machine {
	names := map[model.Status]string{
		model.DocumentConcept:       "Concept",
		model.DocumentProForma:      "Pro_forma",
		model.DocumentApproved:      "Approved",
		model.DocumentCreateInvoice: "Create_invoice",
		model.DocumentSent:          "Sent",
		model.DocumentPaid:          "Paid",
		model.DocumentCancelled:     "Cancelled",
	}
	return NewMachine(model.ResourceDocument, names,
		[]model.Status{model.DocumentPaid, model.DocumentCancelled},
		Rule{To: model.DocumentConcept, From: []model.Status{model.DocumentProForma}, Verb: "submit"},
		Rule{
			To:      model.DocumentProForma,
			From:    []model.Status{model.DocumentConcept},
			Verb:    "pro-forma",
			Require: []Step{requireLines},
			Before:  []Step{u.renderDocument("pro-forma", "pro_forma_pdf")},
		},
		Rule{
			To:      model.DocumentApproved,
			From:    []model.Status{model.DocumentConcept, model.DocumentProForma},
			Verb:    "approve",
			Require: []Step{requireLines},
		},
		Rule{
			To:      model.DocumentCreateInvoice,
			From:    []model.Status{model.DocumentApproved},
			Verb:    "invoice",
			Require: []Step{requireConsistentLines},
			Before:  []Step{u.renderDocument("invoice", "invoice_pdf")},
		},
		Rule{To: model.DocumentSent, From: []model.Status{model.DocumentCreateInvoice}, Verb: "send"},
		Rule{
			To:      model.DocumentPaid,
			From:    []model.Status{model.DocumentSent},
			Verb:    "mark-paid",
			Require: []Step{requirePaidAt},
			After:   []Step{u.resolveDocumentStock},
		},
		Rule{
			To: model.DocumentCancelled,
			From: []model.Status{
				model.DocumentConcept,
				model.DocumentProForma,
				model.DocumentApproved,
				model.DocumentCreateInvoice,
				model.DocumentSent,
			},
			Verb: "cancel",
		},
	)
}

func (u *WorkflowUseCase) quoteMachine() *Machine {
	names := map[model.Status]string{
		model.QuoteConcept:          "Concept",
		model.QuoteSubmitted:        "Submitted",
		model.QuoteApproved:         "Approved",
		model.QuoteSent:             "Sent",
		model.QuoteAcceptedByClient: "Accepted_by_client",
		model.QuoteStopQuote:        "Stop_quote",
		model.QuoteClosed:           "Closed",
		model.QuoteRejected:         "Rejected",
	}
	open := []model.Status{
		model.QuoteConcept,
		model.QuoteSubmitted,
		model.QuoteApproved,
		model.QuoteSent,
		model.QuoteAcceptedByClient,
	}
	return NewMachine(model.ResourceQuote, names,
		[]model.Status{model.QuoteClosed, model.QuoteRejected},
		Rule{To: model.QuoteConcept, From: []model.Status{model.QuoteSubmitted}, Verb: "submit"},
		Rule{To: model.QuoteSubmitted, From: []model.Status{model.QuoteConcept}, Verb: "submit", Require: []Step{requireVehicles}},
		Rule{To: model.QuoteApproved, From: []model.Status{model.QuoteSubmitted}, Verb: "approve"},
		Rule{
			To:     model.QuoteSent,
			From:   []model.Status{model.QuoteApproved},
			Verb:   "send",
			Before: []Step{u.renderDocument("quote", "quote_pdf")},
		},
		Rule{
			To:       model.QuoteStopQuote,
			From:     []model.Status{model.QuoteApproved, model.QuoteSent},
			Verb:     "stop",
			Before:   []Step{u.closeOpenInvitations},
			Retarget: model.QuoteSubmitted,
		},
		Rule{
			To:      model.QuoteAcceptedByClient,
			From:    []model.Status{model.QuoteSent},
			Verb:    "accept",
			Require: []Step{u.requireAcceptedInvitation},
			Before:  []Step{u.adoptInvitationCustomer},
			After:   []Step{u.closeCompetingQuotes},
		},
		Rule{To: model.QuoteClosed, From: open, Verb: "close"},
		Rule{
			To:   model.QuoteRejected,
			From: []model.Status{model.QuoteSubmitted, model.QuoteApproved, model.QuoteSent},
			Verb: "reject",
		},
	)
}
