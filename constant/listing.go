package constant

// DistrictAny disables the district filter when listing open listings.
const DistrictAny = "Any"

// ListingCollection is the table backing the shared record collection.
// Open listings and orders live in the same collection, discriminated by
// the presence of a user email on the record.
const ListingCollection = "listing"
