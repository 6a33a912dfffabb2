package keys

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Address is a stable, collision-free identifier for a ledger entity,
// reproducible by any caller from the same seed label and key components.
type Address string

// Seed labels, one per entity kind.
const (
	SeedCeo              = "m4aProtocolCEO"
	SeedStats            = "processedClaimStats"
	SeedQueue            = "claimQueue"
	SeedFeeToken         = "feeToken"
	SeedProcessor        = "processor"
	SeedSubmitter        = "submitter"
	SeedPatient          = "patient"
	SeedClaim            = "claim"
	SeedProcessedClaim   = "processedClaim"
	SeedState            = "state"
	SeedHospital         = "hospital"
	SeedInsuranceCompany = "insuranceCompany"
	SeedPatientRecord    = "patientRecord"
)

// Derive computes the address for a seed label and its key components.
// Every component is length-prefixed before hashing so that distinct
// (label, components) tuples can never collide on concatenation.
func Derive(label string, components ...[]byte) Address {
	h := sha256.New()
	writeLenPrefixed(h, []byte(label))
	for _, c := range components {
		writeLenPrefixed(h, c)
	}
	return Address(hex.EncodeToString(h.Sum(nil)))
}

func writeLenPrefixed(h interface{ Write([]byte) (int, error) }, b []byte) {
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], uint32(len(b)))
	h.Write(n[:])
	h.Write(b)
}

func u8(v uint8) []byte { return []byte{v} }

func u16(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func u32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func u64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

// Ceo returns the address of the singleton CEO account.
func Ceo() Address { return Derive(SeedCeo) }

// Stats returns the address of the singleton processed-claim stats account.
func Stats() Address { return Derive(SeedStats) }

// Queue returns the address of the singleton claim queue account.
func Queue() Address { return Derive(SeedQueue) }

// FeeToken returns the address of a fee token registry entry.
func FeeToken(mint string) Address { return Derive(SeedFeeToken, []byte(mint)) }

// Processor returns the address of a processor account.
func Processor(identity string) Address { return Derive(SeedProcessor, []byte(identity)) }

// Submitter returns the address of a submitter account.
func Submitter(identity string) Address { return Derive(SeedSubmitter, []byte(identity)) }

// Patient returns the address of a patient sub-record of a submitter.
func Patient(submitter string, index uint8) Address {
	return Derive(SeedPatient, []byte(submitter), u8(index))
}

// Claim returns the address of a submitter's open claim.
func Claim(submitter string) Address { return Derive(SeedClaim, []byte(submitter)) }

// ProcessedClaim returns the address of a processed claim, located by the
// owning processor and its processor-local sequence number.
func ProcessedClaim(processor string, sequence uint64) Address {
	return Derive(SeedProcessedClaim, []byte(processor), u64(sequence))
}

// State returns the address of a (country, state) directory account.
func State(countryIndex, stateIndex uint16) Address {
	return Derive(SeedState, u16(countryIndex), u16(stateIndex))
}

// Hospital returns the address of a hospital master record.
func Hospital(countryIndex, stateIndex uint16, hospitalIndex uint32) Address {
	return Derive(SeedHospital, u16(countryIndex), u16(stateIndex), u32(hospitalIndex))
}

// InsuranceCompany returns the address of an insurance company master record.
func InsuranceCompany(index uint32) Address {
	return Derive(SeedInsuranceCompany, u32(index))
}

// PatientRecord returns the address of a patient history record.
func PatientRecord(submitter string, patientIndex uint8) Address {
	return Derive(SeedPatientRecord, []byte(submitter), u8(patientIndex))
}
