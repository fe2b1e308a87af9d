package escrow

// Contract ABI, single source of truth for call encoding, return decoding,
// and event log decoding. Only the surface this client touches is declared.
const contractABI = `[
  {"type":"function","name":"withdrawIsOpen","stateMutability":"view",
   "inputs":[],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"redistributionPrepared","stateMutability":"view",
   "inputs":[],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"withdrawDuration","stateMutability":"view",
   "inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"withdrawsOpenedAt","stateMutability":"view",
   "inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"totalWithdrawnSnapshot","stateMutability":"view",
   "inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"donatedAtCurrentRound","stateMutability":"view",
   "inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getUser","stateMutability":"view",
   "inputs":[{"name":"account","type":"address"}],
   "outputs":[
     {"name":"stake","type":"uint256"},
     {"name":"remaining","type":"uint256"},
     {"name":"withdrawn","type":"uint256"},
     {"name":"withdrew","type":"bool"},
     {"name":"claimed","type":"bool"}]},
  {"type":"function","name":"deposit","stateMutability":"payable","inputs":[],"outputs":[]},
  {"type":"function","name":"addUnwithdrawableETH","stateMutability":"payable","inputs":[],"outputs":[]},
  {"type":"function","name":"withdrawAll","stateMutability":"nonpayable","inputs":[],"outputs":[]},
  {"type":"function","name":"claimReward","stateMutability":"nonpayable","inputs":[],"outputs":[]},
  {"type":"event","name":"Deposited","inputs":[
    {"name":"user","type":"address","indexed":true},
    {"name":"amount","type":"uint256","indexed":false}]},
  {"type":"event","name":"Donated","inputs":[
    {"name":"from","type":"address","indexed":true},
    {"name":"amount","type":"uint256","indexed":false}]},
  {"type":"event","name":"Withdrawn","inputs":[
    {"name":"user","type":"address","indexed":true},
    {"name":"amount","type":"uint256","indexed":false}]},
  {"type":"event","name":"Claimed","inputs":[
    {"name":"user","type":"address","indexed":true},
    {"name":"amount","type":"uint256","indexed":false}]},
  {"type":"event","name":"Opened","inputs":[
    {"name":"timestamp","type":"uint256","indexed":false}]},
  {"type":"event","name":"Closed","inputs":[
    {"name":"poolSnapshot","type":"uint256","indexed":false},
    {"name":"totalWithdrawnSnapshot","type":"uint256","indexed":false}]},
  {"type":"event","name":"RoundReset","inputs":[
    {"name":"recycled","type":"uint256","indexed":false},
    {"name":"roundId","type":"uint256","indexed":false}]}
]`
