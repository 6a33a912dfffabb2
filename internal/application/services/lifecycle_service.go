package services

import (
	"context"
	"fmt"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/zatekoja/claimsledger/internal/domain/entities"
	"github.com/zatekoja/claimsledger/internal/domain/keys"
	"github.com/zatekoja/claimsledger/internal/domain/providers"
	"github.com/zatekoja/claimsledger/internal/domain/repositories"
	"github.com/zatekoja/claimsledger/pkg/config"
	apperrors "github.com/zatekoja/claimsledger/pkg/errors"
)

// LifecycleService drives claims through their lifecycle: submission,
// assignment, approval, denial, appeal, undenial, appeal denial, revocation
// and max denial. Every transition runs as one ledger transaction; its event
// is published only after the transaction commits.
type LifecycleService struct {
	ledger repositories.Ledger
	events *eventPublisher
	cfg    config.EngineConfig
}

// NewLifecycleService creates a new lifecycle service. The event bus may be
// nil, in which case transitions commit without emitting events.
func NewLifecycleService(ledger repositories.Ledger, bus providers.EventBus, cfg config.EngineConfig) *LifecycleService {
	return &LifecycleService{
		ledger: ledger,
		events: newEventPublisher(bus),
		cfg:    cfg,
	}
}

// SubmitClaimInput carries the caller-supplied fields of a new claim. The
// hospital and insurance fields are a snapshot used to materialize master
// records during processing.
type SubmitClaimInput struct {
	PatientIndex              uint8  `json:"patient_index"`
	Mint                      string `json:"mint"`
	CountryIndex              uint16 `json:"country_index"`
	StateIndex                uint16 `json:"state_index"`
	HospitalIndex             uint32 `json:"hospital_index"`
	HospitalType              uint8  `json:"hospital_type"`
	HospitalName              string `json:"hospital_name"`
	HospitalAddress           string `json:"hospital_address"`
	HospitalCity              string `json:"hospital_city"`
	HospitalZipCode           uint32 `json:"hospital_zip_code"`
	HospitalPhoneNumber       uint64 `json:"hospital_phone_number"`
	HospitalBillInvoiceNumber string `json:"hospital_bill_invoice_number"`
	Note                      string `json:"note"`
	Amount                    uint64 `json:"amount"`
	Ailment                   string `json:"ailment"`
	InsuranceCompanyIndex     uint32 `json:"insurance_company_index"`
	InsuranceCompanyName      string `json:"insurance_company_name"`
}

func (in *SubmitClaimInput) validate() error {
	switch {
	case in.Mint == "":
		return apperrors.NewValidationError("payment token mint is required")
	case in.Amount == 0:
		return apperrors.NewValidationError("claim amount must be greater than zero")
	case in.HospitalName == "" || utf8.RuneCountInString(in.HospitalName) > entities.MaxHospitalNameLen:
		return apperrors.NewValidationError(fmt.Sprintf("hospital name is required and limited to %d characters", entities.MaxHospitalNameLen))
	case utf8.RuneCountInString(in.HospitalAddress) > entities.MaxAddressLen:
		return apperrors.NewValidationError(fmt.Sprintf("hospital address is limited to %d characters", entities.MaxAddressLen))
	case utf8.RuneCountInString(in.HospitalCity) > entities.MaxCityLen:
		return apperrors.NewValidationError(fmt.Sprintf("hospital city is limited to %d characters", entities.MaxCityLen))
	case utf8.RuneCountInString(in.HospitalBillInvoiceNumber) > entities.MaxInvoiceNumberLen:
		return apperrors.NewValidationError(fmt.Sprintf("invoice number is limited to %d characters", entities.MaxInvoiceNumberLen))
	case utf8.RuneCountInString(in.Note) > entities.MaxNoteLen:
		return apperrors.NewValidationError(fmt.Sprintf("note is limited to %d characters", entities.MaxNoteLen))
	case in.Ailment == "" || utf8.RuneCountInString(in.Ailment) > entities.MaxAilmentLen:
		return apperrors.NewValidationError(fmt.Sprintf("ailment is required and limited to %d characters", entities.MaxAilmentLen))
	case utf8.RuneCountInString(in.InsuranceCompanyName) > entities.MaxInsuranceNameLen:
		return apperrors.NewValidationError(fmt.Sprintf("insurance company name is limited to %d characters", entities.MaxInsuranceNameLen))
	}
	return nil
}

func validateReason(reason string) error {
	if reason == "" {
		return apperrors.NewValidationError("a reason is required")
	}
	if utf8.RuneCountInString(reason) > entities.MaxNoteLen {
		return apperrors.NewValidationError(fmt.Sprintf("reason is limited to %d characters", entities.MaxNoteLen))
	}
	return nil
}

// SubmitClaim places a new claim on the queue. A submitter has at most one
// open claim at a time.
func (s *LifecycleService) SubmitClaim(ctx context.Context, signer string, input SubmitClaimInput) (*entities.Claim, error) {
	var claim entities.Claim
	err := s.ledger.Update(ctx, func(tx repositories.Txn) error {
		queue, ok := repositories.Get[entities.ClaimQueue](tx, keys.Queue())
		if !ok || !queue.Enabled {
			return apperrors.NewQueueDisabledError("claim queue is not accepting submissions")
		}
		if _, ok := tx.Get(keys.FeeToken(input.Mint)); !ok {
			return apperrors.NewUnknownPaymentTokenError(fmt.Sprintf("payment token %s is not accepted", input.Mint))
		}
		if _, ok := tx.Get(keys.Submitter(signer)); !ok {
			return apperrors.NewNotFoundError("submitter account not found")
		}
		if _, ok := tx.Get(keys.Patient(signer, input.PatientIndex)); !ok {
			return apperrors.NewNotFoundError(fmt.Sprintf("patient %d not found", input.PatientIndex))
		}
		if err := input.validate(); err != nil {
			return err
		}

		addr := keys.Claim(signer)
		if _, ok := tx.Get(addr); ok {
			return apperrors.NewConflictError("submitter already has an open claim")
		}

		claim = entities.Claim{
			Submitter:                 signer,
			PatientIndex:              input.PatientIndex,
			Mint:                      input.Mint,
			CountryIndex:              input.CountryIndex,
			StateIndex:                input.StateIndex,
			HospitalIndex:             input.HospitalIndex,
			HospitalType:              input.HospitalType,
			HospitalName:              input.HospitalName,
			HospitalAddress:           input.HospitalAddress,
			HospitalCity:              input.HospitalCity,
			HospitalZipCode:           input.HospitalZipCode,
			HospitalPhoneNumber:       input.HospitalPhoneNumber,
			HospitalBillInvoiceNumber: input.HospitalBillInvoiceNumber,
			Note:                      input.Note,
			Amount:                    input.Amount,
			Ailment:                   input.Ailment,
			InsuranceCompanyIndex:     input.InsuranceCompanyIndex,
			InsuranceCompanyName:      input.InsuranceCompanyName,
			Status:                    entities.ClaimStatusQueued,
			SubmittedAt:               time.Now().UTC(),
		}
		tx.Put(addr, claim)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.publish(ctx, &entities.ClaimEvent{
		Type:      entities.ClaimEventSubmitted,
		Submitter: signer,
	})
	return &claim, nil
}

// AssignClaim takes ownership of a queued claim for the signing processor and
// opens its processed-claim record at the processor's current sequence.
func (s *LifecycleService) AssignClaim(ctx context.Context, signer, submitter string) (*entities.ProcessedClaim, error) {
	var pc entities.ProcessedClaim
	err := s.ledger.Update(ctx, func(tx repositories.Txn) error {
		proc, err := requireActiveProcessor(tx, signer)
		if err != nil {
			return err
		}

		claimAddr := keys.Claim(submitter)
		claim, ok := repositories.Get[entities.Claim](tx, claimAddr)
		if !ok {
			return apperrors.NewNotFoundError("claim not found")
		}
		if claim.Status != entities.ClaimStatusQueued {
			return apperrors.NewInvalidStateError("claim is already assigned")
		}

		pcAddr := keys.ProcessedClaim(signer, proc.ProcessedClaimCount)
		if _, ok := tx.Get(pcAddr); ok {
			return apperrors.NewConflictError("processor already has a claim in progress")
		}

		claim.Status = entities.ClaimStatusAssigned
		claim.Processor = signer

		pc = entities.ProcessedClaim{
			Processor:  signer,
			Sequence:   proc.ProcessedClaimCount,
			Claim:      claim,
			Status:     entities.ProcessedStatusInProgress,
			AssignedAt: time.Now().UTC(),
		}

		tx.Put(claimAddr, claim)
		tx.Put(pcAddr, pc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.publish(ctx, &entities.ClaimEvent{
		Type:      entities.ClaimEventAssigned,
		Submitter: submitter,
		Processor: signer,
		Sequence:  pc.Sequence,
		Status:    pc.Status,
	})
	return &pc, nil
}

// ClaimEdits carries the processor-editable fields of a claim.
type ClaimEdits struct {
	HospitalBillInvoiceNumber string `json:"hospital_bill_invoice_number"`
	Note                      string `json:"note"`
	Amount                    uint64 `json:"amount"`
	Ailment                   string `json:"ailment"`
}

func (e *ClaimEdits) validate() error {
	switch {
	case e.Amount == 0:
		return apperrors.NewValidationError("claim amount must be greater than zero")
	case utf8.RuneCountInString(e.HospitalBillInvoiceNumber) > entities.MaxInvoiceNumberLen:
		return apperrors.NewValidationError(fmt.Sprintf("invoice number is limited to %d characters", entities.MaxInvoiceNumberLen))
	case utf8.RuneCountInString(e.Note) > entities.MaxNoteLen:
		return apperrors.NewValidationError(fmt.Sprintf("note is limited to %d characters", entities.MaxNoteLen))
	case e.Ailment == "" || utf8.RuneCountInString(e.Ailment) > entities.MaxAilmentLen:
		return apperrors.NewValidationError(fmt.Sprintf("ailment is required and limited to %d characters", entities.MaxAilmentLen))
	}
	return nil
}

func (e *ClaimEdits) apply(claim *entities.Claim) {
	claim.HospitalBillInvoiceNumber = e.HospitalBillInvoiceNumber
	claim.Note = e.Note
	claim.Amount = e.Amount
	claim.Ailment = e.Ailment
}

// ApproveClaim approves the signing processor's in-progress claim. The
// patient, hospital and insurance company records the claim refers to must
// all exist.
func (s *LifecycleService) ApproveClaim(ctx context.Context, signer string) error {
	return s.finalizeInProgress(ctx, signer, entities.ClaimEventApproved,
		func(tx repositories.Txn, pc *entities.ProcessedClaim, stats *entities.Stats) error {
			if err := requireAllRecords(tx, pc.Claim); err != nil {
				return err
			}
			pc.Status = entities.ProcessedStatusApproved
			return bump(&stats.ApprovedClaimCount, "approved claim")
		})
}

// ApproveClaimWithEdits corrects the claim's billing fields and approves it
// in the same transaction.
func (s *LifecycleService) ApproveClaimWithEdits(ctx context.Context, signer string, edits ClaimEdits) error {
	if err := edits.validate(); err != nil {
		return err
	}
	return s.finalizeInProgress(ctx, signer, entities.ClaimEventApproved,
		func(tx repositories.Txn, pc *entities.ProcessedClaim, stats *entities.Stats) error {
			if err := requireAllRecords(tx, pc.Claim); err != nil {
				return err
			}
			edits.apply(&pc.Claim)
			pc.Status = entities.ProcessedStatusApproved
			return bump(&stats.ApprovedClaimCount, "approved claim")
		})
}

// DenyClaimWithAllRecords denies the signing processor's in-progress claim.
// The claim's full record set must already exist.
func (s *LifecycleService) DenyClaimWithAllRecords(ctx context.Context, signer, reason string) error {
	if err := validateReason(reason); err != nil {
		return err
	}
	return s.finalizeInProgress(ctx, signer, entities.ClaimEventDenied,
		func(tx repositories.Txn, pc *entities.ProcessedClaim, stats *entities.Stats) error {
			if err := requireAllRecords(tx, pc.Claim); err != nil {
				return err
			}
			pc.Status = entities.ProcessedStatusDenied
			pc.DenialReasons = append(slices.Clone(pc.DenialReasons), reason)
			return bump(&stats.DeniedClaimCount, "denied claim")
		})
}

// CreatePatientRecordAndDenyClaim materializes the patient history record and
// denies the claim in the same transaction. Used when a claim is denied before
// its master records exist.
func (s *LifecycleService) CreatePatientRecordAndDenyClaim(ctx context.Context, signer, reason string) error {
	if err := validateReason(reason); err != nil {
		return err
	}
	return s.finalizeInProgress(ctx, signer, entities.ClaimEventDenied,
		func(tx repositories.Txn, pc *entities.ProcessedClaim, stats *entities.Stats) error {
			if err := ensurePatientRecord(tx, pc.Claim, pc.Processor, pc.Sequence); err != nil {
				return err
			}
			pc.Status = entities.ProcessedStatusDenied
			pc.DenialReasons = append(slices.Clone(pc.DenialReasons), reason)
			return bump(&stats.DeniedClaimCount, "denied claim")
		})
}

// finalizeInProgress runs the first finalize of the signing processor's
// in-progress claim: apply decides the terminal status and bumps its counter,
// then the shared bookkeeping runs. The processor-local sequence is consumed
// exactly here, never on later review transitions.
func (s *LifecycleService) finalizeInProgress(ctx context.Context, signer string, eventType entities.ClaimEventType,
	apply func(tx repositories.Txn, pc *entities.ProcessedClaim, stats *entities.Stats) error) error {

	var event entities.ClaimEvent
	err := s.ledger.Update(ctx, func(tx repositories.Txn) error {
		proc, err := requireActiveProcessor(tx, signer)
		if err != nil {
			return err
		}

		pcAddr := keys.ProcessedClaim(signer, proc.ProcessedClaimCount)
		pc, ok := repositories.Get[entities.ProcessedClaim](tx, pcAddr)
		if !ok {
			return apperrors.NewNotFoundError("processor has no claim in progress")
		}
		if pc.Status != entities.ProcessedStatusInProgress {
			return apperrors.NewInvalidStateError("processed claim is already finalized")
		}

		stats, ok := repositories.Get[entities.Stats](tx, keys.Stats())
		if !ok {
			return apperrors.NewNotFoundError("stats account is not initialized")
		}

		if err := apply(tx, &pc, &stats); err != nil {
			return err
		}
		if err := bump(&stats.ProcessedClaimCount, "processed claim"); err != nil {
			return err
		}
		if err := bump(&proc.ProcessedClaimCount, "processor sequence"); err != nil {
			return err
		}
		pc.FinalizedAt = time.Now().UTC()

		tx.Put(pcAddr, pc)
		tx.Put(keys.Stats(), stats)
		tx.Put(keys.Processor(signer), proc)
		tx.Delete(keys.Claim(pc.Claim.Submitter))

		event = entities.ClaimEvent{
			Type:      eventType,
			Submitter: pc.Claim.Submitter,
			Processor: signer,
			Sequence:  pc.Sequence,
			Status:    pc.Status,
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.events.publish(ctx, &event)
	return nil
}

// AppealDeniedClaimWithOnlyPatientRecord appeals the denial at the given
// (processor, sequence). Only the patient record is required to exist.
func (s *LifecycleService) AppealDeniedClaimWithOnlyPatientRecord(ctx context.Context, signer, processor string, sequence uint64, mint, reason string) error {
	return s.appeal(ctx, signer, processor, sequence, mint, reason, false)
}

// AppealDeniedClaimWithAllRecords appeals the denial at the given
// (processor, sequence). The claim's full record set must exist.
func (s *LifecycleService) AppealDeniedClaimWithAllRecords(ctx context.Context, signer, processor string, sequence uint64, mint, reason string) error {
	return s.appeal(ctx, signer, processor, sequence, mint, reason, true)
}

func (s *LifecycleService) appeal(ctx context.Context, signer, processor string, sequence uint64, mint, reason string, needMasterRecords bool) error {
	if err := validateReason(reason); err != nil {
		return err
	}

	var event entities.ClaimEvent
	err := s.ledger.Update(ctx, func(tx repositories.Txn) error {
		pcAddr, pc, err := processedAt(tx, processor, sequence)
		if err != nil {
			return err
		}
		if pc.Claim.Submitter != signer {
			return apperrors.NewUnauthorizedError("only the claim's submitter may appeal")
		}
		if pc.Status != entities.ProcessedStatusDenied {
			return apperrors.NewInvalidStateError("only a denied claim can be appealed")
		}
		if mint != pc.Claim.Mint {
			return apperrors.NewValidationError("payment token does not match the original claim")
		}
		if err := requirePatientRecord(tx, pc.Claim); err != nil {
			return err
		}
		if needMasterRecords {
			if err := requireMasterRecords(tx, pc.Claim); err != nil {
				return err
			}
		}

		pc.Status = entities.ProcessedStatusAppealed
		pc.AppealReasons = append(slices.Clone(pc.AppealReasons), reason)
		tx.Put(pcAddr, pc)

		event = entities.ClaimEvent{
			Type:      entities.ClaimEventAppealed,
			Submitter: signer,
			Processor: processor,
			Sequence:  pc.Sequence,
			Status:    pc.Status,
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.events.publish(ctx, &event)
	return nil
}

// UndenyClaimAndCreateHospitalAndInsuranceCompanyRecords overturns an appealed
// denial, materializing the claim's hospital and insurance company records
// from its snapshot in the same transaction.
func (s *LifecycleService) UndenyClaimAndCreateHospitalAndInsuranceCompanyRecords(ctx context.Context, signer, processor string, sequence uint64) error {
	return s.review(ctx, signer, processor, sequence, entities.ProcessedStatusAppealed, entities.ClaimEventUndenied,
		func(tx repositories.Txn, pc *entities.ProcessedClaim, stats *entities.Stats) error {
			if err := ensureHospitalAndInsurance(tx, pc.Claim); err != nil {
				return err
			}
			pc.Status = entities.ProcessedStatusUndenied
			return bump(&stats.UndeniedClaimCount, "undenied claim")
		})
}

// UndenyClaimWithAllRecords overturns an appealed denial. The claim's full
// record set must already exist.
func (s *LifecycleService) UndenyClaimWithAllRecords(ctx context.Context, signer, processor string, sequence uint64) error {
	return s.review(ctx, signer, processor, sequence, entities.ProcessedStatusAppealed, entities.ClaimEventUndenied,
		func(tx repositories.Txn, pc *entities.ProcessedClaim, stats *entities.Stats) error {
			if err := requireAllRecords(tx, pc.Claim); err != nil {
				return err
			}
			pc.Status = entities.ProcessedStatusUndenied
			return bump(&stats.UndeniedClaimCount, "undenied claim")
		})
}

// DenyAppealedClaimWithOnlyPatientRecord upholds the denial of an appealed
// claim. Only the patient record is required to exist.
func (s *LifecycleService) DenyAppealedClaimWithOnlyPatientRecord(ctx context.Context, signer, processor string, sequence uint64, reason string) error {
	return s.denyAppeal(ctx, signer, processor, sequence, reason, false)
}

// DenyAppealedClaimWithAllRecords upholds the denial of an appealed claim.
// The claim's full record set must exist.
func (s *LifecycleService) DenyAppealedClaimWithAllRecords(ctx context.Context, signer, processor string, sequence uint64, reason string) error {
	return s.denyAppeal(ctx, signer, processor, sequence, reason, true)
}

func (s *LifecycleService) denyAppeal(ctx context.Context, signer, processor string, sequence uint64, reason string, needMasterRecords bool) error {
	if err := validateReason(reason); err != nil {
		return err
	}
	return s.review(ctx, signer, processor, sequence, entities.ProcessedStatusAppealed, entities.ClaimEventAppealDenied,
		func(tx repositories.Txn, pc *entities.ProcessedClaim, stats *entities.Stats) error {
			if err := requirePatientRecord(tx, pc.Claim); err != nil {
				return err
			}
			if needMasterRecords {
				if err := requireMasterRecords(tx, pc.Claim); err != nil {
					return err
				}
			}
			pc.Status = entities.ProcessedStatusAppealDenied
			pc.DenialReasons = append(slices.Clone(pc.DenialReasons), reason)
			return bump(&stats.DeniedAppealCount, "denied appeal")
		})
}

// RevokeApproval revokes the approval at the given (processor, sequence). The
// aggregate approved count is left standing; only the revoked count moves.
func (s *LifecycleService) RevokeApproval(ctx context.Context, signer, processor string, sequence uint64, reason string) error {
	if err := validateReason(reason); err != nil {
		return err
	}
	return s.review(ctx, signer, processor, sequence, entities.ProcessedStatusApproved, entities.ClaimEventRevoked,
		func(tx repositories.Txn, pc *entities.ProcessedClaim, stats *entities.Stats) error {
			pc.Status = entities.ProcessedStatusRevoked
			pc.DenialReasons = append(slices.Clone(pc.DenialReasons), reason)
			return bump(&stats.RevokedApprovalCount, "revoked approval")
		})
}

// review runs an administrative transition on the processed claim at the
// addressed (processor, sequence). The processor-local sequence is not
// consumed again; only the counter apply bumps moves.
func (s *LifecycleService) review(ctx context.Context, signer, processor string, sequence uint64, from entities.ProcessedClaimStatus, eventType entities.ClaimEventType,
	apply func(tx repositories.Txn, pc *entities.ProcessedClaim, stats *entities.Stats) error) error {

	var event entities.ClaimEvent
	err := s.ledger.Update(ctx, func(tx repositories.Txn) error {
		if err := requireAdmin(tx, signer); err != nil {
			return err
		}

		pcAddr, pc, err := processedAt(tx, processor, sequence)
		if err != nil {
			return err
		}
		if pc.Status != from {
			return apperrors.NewInvalidStateError(fmt.Sprintf("processed claim is %s, expected %s", pc.Status, from))
		}

		stats, ok := repositories.Get[entities.Stats](tx, keys.Stats())
		if !ok {
			return apperrors.NewNotFoundError("stats account is not initialized")
		}

		if err := apply(tx, &pc, &stats); err != nil {
			return err
		}

		tx.Put(pcAddr, pc)
		tx.Put(keys.Stats(), stats)

		event = entities.ClaimEvent{
			Type:      eventType,
			Submitter: pc.Claim.Submitter,
			Processor: processor,
			Sequence:  pc.Sequence,
			Status:    pc.Status,
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.events.publish(ctx, &event)
	return nil
}

// processedAt locates the processed claim a processor finalized at the given
// sequence. Any historical record is addressable, not just the latest.
func processedAt(tx repositories.Txn, processor string, sequence uint64) (keys.Address, entities.ProcessedClaim, error) {
	if _, ok := repositories.Get[entities.ProcessorAccount](tx, keys.Processor(processor)); !ok {
		return "", entities.ProcessedClaim{}, apperrors.NewNotFoundError(fmt.Sprintf("processor %s not found", processor))
	}
	addr := keys.ProcessedClaim(processor, sequence)
	pc, ok := repositories.Get[entities.ProcessedClaim](tx, addr)
	if !ok {
		return "", entities.ProcessedClaim{}, apperrors.NewNotFoundError(fmt.Sprintf("processed claim %d not found for processor %s", sequence, processor))
	}
	return addr, pc, nil
}

// maxDenyAuthorized gates the max-deny fast path: the CEO and super admins
// always pass, and active processors pass when the widened gate is configured.
func (s *LifecycleService) maxDenyAuthorized(tx repositories.Txn, signer string) error {
	if err := requireAdmin(tx, signer); err == nil {
		return nil
	}
	if s.cfg.ProcessorMaxDeny {
		_, err := requireActiveProcessor(tx, signer)
		return err
	}
	return apperrors.NewUnauthorizedError("signer may not max deny claims")
}

// MaxDenyPendingClaim denies a queued claim without normal assignment. The
// processed-claim record opens and finalizes at the signer's sequence in one
// transaction.
func (s *LifecycleService) MaxDenyPendingClaim(ctx context.Context, signer, submitter, reason string) error {
	if err := validateReason(reason); err != nil {
		return err
	}

	var event entities.ClaimEvent
	err := s.ledger.Update(ctx, func(tx repositories.Txn) error {
		if err := s.maxDenyAuthorized(tx, signer); err != nil {
			return err
		}
		proc, ok := repositories.Get[entities.ProcessorAccount](tx, keys.Processor(signer))
		if !ok {
			return apperrors.NewUnauthorizedError("max denying a pending claim requires a processor account")
		}

		claimAddr := keys.Claim(submitter)
		claim, ok := repositories.Get[entities.Claim](tx, claimAddr)
		if !ok {
			return apperrors.NewNotFoundError("claim not found")
		}
		if claim.Status != entities.ClaimStatusQueued {
			return apperrors.NewInvalidStateError("claim is already assigned")
		}

		pcAddr := keys.ProcessedClaim(signer, proc.ProcessedClaimCount)
		if _, ok := tx.Get(pcAddr); ok {
			return apperrors.NewConflictError("processor already has a claim in progress")
		}

		now := time.Now().UTC()
		claim.Processor = signer
		pc := entities.ProcessedClaim{
			Processor:     signer,
			Sequence:      proc.ProcessedClaimCount,
			Claim:         claim,
			Status:        entities.ProcessedStatusMaxDenied,
			DenialReasons: []string{reason},
			AssignedAt:    now,
			FinalizedAt:   now,
		}

		if err := s.applyMaxDenyCounters(tx, &proc); err != nil {
			return err
		}

		tx.Put(pcAddr, pc)
		tx.Put(keys.Processor(signer), proc)
		tx.Delete(claimAddr)

		event = entities.ClaimEvent{
			Type:      entities.ClaimEventMaxDenied,
			Submitter: submitter,
			Processor: signer,
			Sequence:  pc.Sequence,
			Status:    pc.Status,
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.events.publish(ctx, &event)
	return nil
}

// MaxDenyInProgressClaim denies a claim already assigned to a processor,
// finalizing that processor's in-progress record at its sequence.
func (s *LifecycleService) MaxDenyInProgressClaim(ctx context.Context, signer, submitter, reason string) error {
	if err := validateReason(reason); err != nil {
		return err
	}

	var event entities.ClaimEvent
	err := s.ledger.Update(ctx, func(tx repositories.Txn) error {
		if err := s.maxDenyAuthorized(tx, signer); err != nil {
			return err
		}

		claimAddr := keys.Claim(submitter)
		claim, ok := repositories.Get[entities.Claim](tx, claimAddr)
		if !ok {
			return apperrors.NewNotFoundError("claim not found")
		}
		if claim.Status != entities.ClaimStatusAssigned {
			return apperrors.NewInvalidStateError("claim is not assigned to a processor")
		}

		proc, ok := repositories.Get[entities.ProcessorAccount](tx, keys.Processor(claim.Processor))
		if !ok {
			return apperrors.NewNotFoundError("assigned processor not found")
		}

		pcAddr := keys.ProcessedClaim(claim.Processor, proc.ProcessedClaimCount)
		pc, ok := repositories.Get[entities.ProcessedClaim](tx, pcAddr)
		if !ok {
			return apperrors.NewNotFoundError("processed claim not found")
		}
		if pc.Status != entities.ProcessedStatusInProgress {
			return apperrors.NewInvalidStateError("processed claim is already finalized")
		}

		pc.Status = entities.ProcessedStatusMaxDenied
		pc.DenialReasons = append(slices.Clone(pc.DenialReasons), reason)
		pc.FinalizedAt = time.Now().UTC()

		if err := s.applyMaxDenyCounters(tx, &proc); err != nil {
			return err
		}

		tx.Put(pcAddr, pc)
		tx.Put(keys.Processor(claim.Processor), proc)
		tx.Delete(claimAddr)

		event = entities.ClaimEvent{
			Type:      entities.ClaimEventMaxDenied,
			Submitter: submitter,
			Processor: claim.Processor,
			Sequence:  pc.Sequence,
			Status:    pc.Status,
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.events.publish(ctx, &event)
	return nil
}

// applyMaxDenyCounters moves the stats, queue and processor counters a max
// denial touches. The processor passed in owns the finalized sequence.
func (s *LifecycleService) applyMaxDenyCounters(tx repositories.Txn, proc *entities.ProcessorAccount) error {
	stats, ok := repositories.Get[entities.Stats](tx, keys.Stats())
	if !ok {
		return apperrors.NewNotFoundError("stats account is not initialized")
	}
	queue, ok := repositories.Get[entities.ClaimQueue](tx, keys.Queue())
	if !ok {
		return apperrors.NewNotFoundError("claim queue is not initialized")
	}

	if err := bump(&stats.ProcessedClaimCount, "processed claim"); err != nil {
		return err
	}
	if err := bump(&stats.MaxDeniedClaimCount, "max denied claim"); err != nil {
		return err
	}
	if err := bump(&queue.MaxDeniedClaimCount, "queue max denied"); err != nil {
		return err
	}
	if err := bump(&proc.ProcessedClaimCount, "processor sequence"); err != nil {
		return err
	}

	tx.Put(keys.Stats(), stats)
	tx.Put(keys.Queue(), queue)
	return nil
}

// GetClaim returns a submitter's open claim.
func (s *LifecycleService) GetClaim(ctx context.Context, submitter string) (*entities.Claim, error) {
	var claim entities.Claim
	err := s.ledger.View(ctx, func(tx repositories.Txn) error {
		var ok bool
		claim, ok = repositories.Get[entities.Claim](tx, keys.Claim(submitter))
		if !ok {
			return apperrors.NewNotFoundError("claim not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

// ListClaims returns every open claim, queued and assigned.
func (s *LifecycleService) ListClaims(ctx context.Context) ([]*entities.Claim, error) {
	var claims []*entities.Claim
	err := s.ledger.View(ctx, func(tx repositories.Txn) error {
		tx.Range(func(_ keys.Address, value any) bool {
			if claim, ok := value.(entities.Claim); ok {
				claims = append(claims, &claim)
			}
			return true
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// GetProcessedClaim returns a processed claim by processor and sequence.
func (s *LifecycleService) GetProcessedClaim(ctx context.Context, processor string, sequence uint64) (*entities.ProcessedClaim, error) {
	var pc entities.ProcessedClaim
	err := s.ledger.View(ctx, func(tx repositories.Txn) error {
		var ok bool
		pc, ok = repositories.Get[entities.ProcessedClaim](tx, keys.ProcessedClaim(processor, sequence))
		if !ok {
			return apperrors.NewNotFoundError("processed claim not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &pc, nil
}
