/*
Package escrow implements a trustless escrow between a seller and a buyer.

The seller creates an agreement naming the buyer, an arbiter, the asset
and the exact amount to be paid. Until the agreement is funded the seller
may rewrite the terms. Every rewrite bumps the terms version, so a buyer
always funds the terms they have read.

Funding moves the amount from the buyer into a vault account that is bound
to the agreement and that nobody can sign for. Funds leave the vault only
through a withdraw by the seller, which is allowed once the buyer confirmed
the delivery or once the grace period after shipment elapsed.

	Created -> Funded -> MarkedAsShipped -> BuyerConfirmed -> FundsReleased
	                                   \__________________/

A successful withdraw deletes the agreement. The arbiter is recorded for a
future dispute resolution and is not used by any transition.
*/
package escrow
