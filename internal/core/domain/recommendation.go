package domain

// BucketSize caps every recommendation bucket.
const BucketSize = 3

// Buckets are the three recommendation surfaces built from one candidate set.
//
// The buckets are independent: a product may appear in more than one.
type Buckets struct {
	HiddenGems  []Product
	ValueVault  []Product
	TrendingNow []Product
}

func (b Buckets) Empty() bool {
	return len(b.HiddenGems) == 0 &&
		len(b.ValueVault) == 0 &&
		len(b.TrendingNow) == 0
}
