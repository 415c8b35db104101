package transactionvalidator

import (
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/testapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/txscript"
)

type testTransactionValidator struct {
	*transactionValidator
}

// NewTestTransactionValidator creates an instance of a TestTransactionValidator
func NewTestTransactionValidator(baseTransactionValidator model.TransactionValidator) testapi.TestTransactionValidator {
	return &testTransactionValidator{transactionValidator: baseTransactionValidator.(*transactionValidator)}
}

func (ttv *testTransactionValidator) SigCache() *txscript.SigCache {
	return ttv.sigCache
}

func (ttv *testTransactionValidator) SetSigCache(sigCache *txscript.SigCache) {
	ttv.sigCache = sigCache
}
