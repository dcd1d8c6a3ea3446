package ir

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

// TestGeneratedIRSnapshots locks down the generated IR shape for a handful
// of representative programs, the way the teacher's fixture suite snapshots
// interpreter output rather than hand-asserting every line.
func TestGeneratedIRSnapshots(t *testing.T) {
	programs := map[string]string{
		"bubble_sort": `DECLARE A : ARRAY[1:5] OF INTEGER
DECLARE I : INTEGER
DECLARE J : INTEGER
DECLARE TEMP : INTEGER
FOR I <- 1 TO 4
  FOR J <- 1 TO 4 - I
    IF A[J] > A[J + 1] THEN
      TEMP <- A[J]
      A[J] <- A[J + 1]
      A[J + 1] <- TEMP
    ENDIF
  NEXT J
NEXT I`,
		"case_multi_value": `DECLARE GRADE : CHAR
CASE OF GRADE
  'A', 'B' : OUTPUT "Pass"
  'C' : OUTPUT "Borderline"
  OTHERWISE : OUTPUT "Fail"
ENDCASE`,
		"procedure_byref": `PROCEDURE SWAP(BYREF A : INTEGER, BYREF B : INTEGER)
  DECLARE TEMP : INTEGER
  TEMP <- A
  A <- B
  B <- TEMP
ENDPROCEDURE`,
	}

	for name, src := range programs {
		t.Run(name, func(t *testing.T) {
			lines := generate(t, src)
			snaps.MatchSnapshot(t, lines)
		})
	}
}
