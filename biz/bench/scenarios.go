package bench

import (
	"fmt"
	"strings"

	"socialbench/biz/model/benchmark"
)

// 场景输入种类：决定每次迭代注入哪个标识符参数。
type inputKind int

const (
	inputNone inputKind = iota
	inputUser
	inputProduct
)

// 场景名称常量，与参考数据集上的操作命名保持一致。
const (
	ScenarioUserRetrieval    = "user_retrieval"
	ScenarioProductRetrieval = "product_retrieval"
	ScenarioUserFollows      = "user_follows"
	ScenarioProductPurchases = "product_purchases"
	ScenarioRecommendation   = "recommendation_queries"
	ScenarioProductVirality  = "product_virality"
	ScenarioUserInfluence    = "user_influence"
	ScenarioViralProducts    = "viral_products"
)

// Scenario 描述一个在两个后端各有等价实现的基准场景。
// Queries 按后端名保存查询文本；SQL 使用 @named 参数，Cypher 使用 $ 参数。
// Cypher 中变长路径的层级上界无法作为驱动参数传递，
// 以 %d 占位并在 QueryFor 中用校验过的 maxLevel 填充。
type Scenario struct {
	Name      string
	Input     inputKind
	UsesLevel bool
	Queries   map[string]string
}

// QueryFor 返回某后端在给定层级下的查询文本。
func (s Scenario) QueryFor(backend string, maxLevel int) (string, bool) {
	q, ok := s.Queries[backend]
	if !ok {
		return "", false
	}
	if strings.Contains(q, "%d") {
		q = fmt.Sprintf(q, maxLevel)
	}
	return q, true
}

// 八个场景的查询目录。关系侧和图侧语义等价，各自使用本后端惯用的写法。
var scenarioCatalog = []Scenario{
	{
		Name:  ScenarioUserRetrieval,
		Input: inputUser,
		Queries: map[string]string{
			benchmark.BackendPostgres: `SELECT id, name, email FROM users WHERE id = @user_id`,
			benchmark.BackendNeo4j: `MATCH (u:User {id: $user_id})
RETURN u`,
		},
	},
	{
		Name:  ScenarioProductRetrieval,
		Input: inputProduct,
		Queries: map[string]string{
			benchmark.BackendPostgres: `SELECT id, name, category, price FROM products WHERE id = @product_id`,
			benchmark.BackendNeo4j: `MATCH (p:Product {id: $product_id})
RETURN p`,
		},
	},
	{
		Name:  ScenarioUserFollows,
		Input: inputUser,
		Queries: map[string]string{
			benchmark.BackendPostgres: `SELECT u.id, u.name, u.email
FROM follows f
JOIN users u ON u.id = f.followed_id
WHERE f.follower_id = @user_id`,
			benchmark.BackendNeo4j: `MATCH (u:User {id: $user_id})-[:FOLLOWS]->(followed:User)
RETURN followed`,
		},
	},
	{
		Name:  ScenarioProductPurchases,
		Input: inputProduct,
		Queries: map[string]string{
			benchmark.BackendPostgres: `SELECT id, user_id, product_id, created_at
FROM purchases
WHERE product_id = @product_id`,
			benchmark.BackendNeo4j: `MATCH (p:Product {id: $product_id})<-[:BOUGHT]-(u:User)
RETURN u`,
		},
	},
	{
		Name:  ScenarioRecommendation,
		Input: inputUser,
		Queries: map[string]string{
			// 两层 join：关注的人买过、而自己没买过的商品，按被购买次数排序。
			benchmark.BackendPostgres: `SELECT pu.product_id, COUNT(pu.id) AS purchase_count
FROM follows f
JOIN purchases pu ON pu.user_id = f.followed_id
WHERE f.follower_id = @user_id
  AND NOT EXISTS (
    SELECT 1 FROM purchases own
    WHERE own.product_id = pu.product_id AND own.user_id = @user_id
  )
GROUP BY pu.product_id
ORDER BY purchase_count DESC
LIMIT 10`,
			benchmark.BackendNeo4j: `MATCH (u:User {id: $user_id})-[:FOLLOWS]->(friend:User)-[:BOUGHT]->(p:Product)
WHERE NOT (u)-[:BOUGHT]->(p)
RETURN p.id AS product_id, p.name AS name, count(friend) AS score
ORDER BY score DESC
LIMIT 10`,
		},
	},
	{
		Name:      ScenarioProductVirality,
		Input:     inputProduct,
		UsesLevel: true,
		Queries: map[string]string{
			// 递归闭包：第 1 层是直接购买者，之后每层沿 follows 反向扩散。
			benchmark.BackendPostgres: `WITH RECURSIVE product_network AS (
    SELECT u.id AS user_id, 1 AS level
    FROM purchases p
    JOIN users u ON p.user_id = u.id
    WHERE p.product_id = @product_id
  UNION
    SELECT f.follower_id AS user_id, pn.level + 1 AS level
    FROM product_network pn
    JOIN follows f ON pn.user_id = f.followed_id
    WHERE pn.level < @max_level
)
SELECT level, COUNT(DISTINCT user_id) AS user_count
FROM product_network
GROUP BY level
ORDER BY level`,
			benchmark.BackendNeo4j: `MATCH (p:Product {id: $product_id})
OPTIONAL MATCH (buyer:User)-[:BOUGHT]->(p)
WITH collect(DISTINCT buyer) AS buyers
UNWIND range(1, $max_level) AS level
OPTIONAL MATCH path = (follower:User)-[:FOLLOWS*1..%d]->(b:User)
WHERE b IN buyers AND length(path) < level
WITH level, buyers, collect(DISTINCT follower) AS followers
RETURN level,
       CASE WHEN level = 1 THEN size(buyers) ELSE size(followers) END AS user_count
ORDER BY level`,
		},
	},
	{
		Name:      ScenarioUserInfluence,
		Input:     inputUser,
		UsesLevel: true,
		Queries: map[string]string{
			benchmark.BackendPostgres: `WITH RECURSIVE user_network AS (
    SELECT id, 0 AS level
    FROM users
    WHERE id = @user_id
  UNION
    SELECT f.follower_id, un.level + 1
    FROM user_network un
    JOIN follows f ON un.id = f.followed_id
    WHERE un.level < @max_level
),
user_purchases AS (
    SELECT un.id AS user_id, p.product_id
    FROM user_network un
    JOIN purchases p ON un.id = p.user_id
)
SELECT un.level,
       COUNT(DISTINCT up.user_id) AS users_count,
       COUNT(DISTINCT up.product_id) AS products_count,
       COUNT(up.product_id) AS purchases_count
FROM user_network un
LEFT JOIN user_purchases up ON un.id = up.user_id
GROUP BY un.level
ORDER BY un.level`,
			benchmark.BackendNeo4j: `MATCH (u:User {id: $user_id})
UNWIND range(0, $max_level) AS level
OPTIONAL MATCH path = (u)<-[:FOLLOWS*0..%d]-(follower:User)
WHERE length(path) = level
WITH level, collect(DISTINCT follower) AS members
OPTIONAL MATCH (m:User)-[b:BOUGHT]->(product:Product)
WHERE m IN members
RETURN level,
       size(members) AS users_count,
       count(DISTINCT product) AS products_count,
       count(b) AS purchases_count
ORDER BY level`,
		},
	},
	{
		Name:      ScenarioViralProducts,
		Input:     inputNone,
		UsesLevel: true,
		Queries: map[string]string{
			benchmark.BackendPostgres: `WITH RECURSIVE product_buyers AS (
    SELECT p.product_id, p.user_id, pr.name AS product_name
    FROM purchases p
    JOIN products pr ON p.product_id = pr.id
),
social_network AS (
    SELECT pb.product_id, pb.product_name, pb.user_id, 1 AS level
    FROM product_buyers pb
  UNION
    SELECT sn.product_id, sn.product_name, f.follower_id, sn.level + 1
    FROM social_network sn
    JOIN follows f ON sn.user_id = f.followed_id
    WHERE sn.level < @max_level
)
SELECT product_id, product_name,
       COUNT(DISTINCT user_id) AS total_reach,
       MAX(level) AS reached_level
FROM social_network
GROUP BY product_id, product_name
ORDER BY total_reach DESC
LIMIT 10`,
			benchmark.BackendNeo4j: `MATCH (p:Product)<-[:BOUGHT]-(u:User)
WITH p, count(u) AS direct_buyers
ORDER BY direct_buyers DESC
LIMIT 10
MATCH (p)<-[:BOUGHT]-(buyer:User)<-[:FOLLOWS*1..%d]-(follower:User)
RETURN p.id AS product_id, p.name AS name, direct_buyers,
       count(DISTINCT follower) AS network_reach,
       direct_buyers + count(DISTINCT follower) AS total_reach
ORDER BY total_reach DESC
LIMIT 10`,
		},
	},
}

// basicScenarios 是 test_type=basic 覆盖的四个场景。
var basicScenarios = []string{
	ScenarioUserRetrieval,
	ScenarioProductRetrieval,
	ScenarioUserFollows,
	ScenarioProductPurchases,
}

// ScenariosFor 按 TestType 选出要运行的场景，保持目录顺序。
func ScenariosFor(t benchmark.TestType) ([]Scenario, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTestType, t)
	}
	if t == benchmark.TestAll {
		out := make([]Scenario, len(scenarioCatalog))
		copy(out, scenarioCatalog)
		return out, nil
	}

	var names []string
	switch t {
	case benchmark.TestBasic:
		names = basicScenarios
	case benchmark.TestRecommendation:
		names = []string{ScenarioRecommendation}
	case benchmark.TestVirality:
		names = []string{ScenarioProductVirality}
	case benchmark.TestInfluence:
		names = []string{ScenarioUserInfluence}
	case benchmark.TestViralProducts:
		names = []string{ScenarioViralProducts}
	}

	var out []Scenario
	for _, sc := range scenarioCatalog {
		for _, name := range names {
			if sc.Name == name {
				out = append(out, sc)
			}
		}
	}
	return out, nil
}

// ScenarioOrder 返回目录中全部场景名，供格式化输出使用。
func ScenarioOrder() []string {
	names := make([]string, len(scenarioCatalog))
	for i, sc := range scenarioCatalog {
		names[i] = sc.Name
	}
	return names
}
