package state

var (
	adTokenBalancePrefix = []byte("watch2give/ad-token/balance/")
	proofPrefix          = []byte("watch2give/proof/")
	stakePrefix          = []byte("watch2give/stake/")
	donationCountPrefix  = []byte("watch2give/donations/")
)
